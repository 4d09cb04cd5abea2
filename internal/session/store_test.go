package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/logger"
	"scheme-eligibility/internal/eligibility"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewStore(Deps{
		Sequencer: eligibility.NewSequencer(log),
		Logger:    log,
	}, ttl)
}

func TestStore_CreateGetDelete(t *testing.T) {
	s := newTestStore(t, time.Minute)

	c := s.Create()
	require.NotEmpty(t, c.ID())
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	require.NoError(t, s.Delete(c.ID()))
	assert.Equal(t, 0, s.Len())

	_, err = s.Get(c.ID())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(c.ID()), apperrors.ErrSessionNotFound)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := newTestStore(t, time.Minute)
	a := s.Create()
	b := s.Create()

	require.NotEqual(t, a.ID(), b.ID())
	a.Reset()
	assert.Equal(t, b.Snapshot(), a.Snapshot())
}

func TestStore_Sweep(t *testing.T) {
	s := newTestStore(t, time.Minute)
	idle := s.Create()
	active := s.Create()

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	active.lastActive = time.Now().Add(90 * time.Second)

	evicted := s.Sweep()

	assert.Equal(t, 1, evicted)
	_, err := s.Get(idle.ID())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = s.Get(active.ID())
	assert.NoError(t, err)
}

func TestStore_SweepDisabled(t *testing.T) {
	s := newTestStore(t, 0)
	s.Create()
	s.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_RunSweeperStopsOnCancel(t *testing.T) {
	s := newTestStore(t, time.Millisecond)
	s.Create()
	s.now = func() time.Time { return time.Now().Add(time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunSweeper(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
