package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-eligibility/internal/common/config"
)

func TestNewRedis(t *testing.T) {
	t.Run("empty address", func(t *testing.T) {
		_, err := NewRedis(config.RedisConfig{})
		assert.Error(t, err)
	})

	t.Run("ping and close", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
		require.NoError(t, err)

		require.NoError(t, client.Ping(context.Background()))
		assert.NotNil(t, client.GetClient())
		assert.NoError(t, client.Close())
	})

	t.Run("ping fails when server is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		client, err := NewRedis(config.RedisConfig{Address: addr})
		require.NoError(t, err)
		defer client.Close()

		err = client.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis ping failed")
	})
}
