package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-eligibility/internal/common/config"
	"scheme-eligibility/internal/common/logger"
)

func TestConnectRedis(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("no address disables cache", func(t *testing.T) {
		rc, err := connectRedis(context.Background(), &config.Config{}, log)
		require.NoError(t, err)
		assert.Nil(t, rc)
	})

	t.Run("reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}}}

		rc, err := connectRedis(context.Background(), cfg, log)
		require.NoError(t, err)
		require.NotNil(t, rc)
		defer rc.Close()
	})

	t.Run("unreachable disables cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := &config.Config{Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: addr}}}

		rc, err := connectRedis(context.Background(), cfg, log)
		require.NoError(t, err)
		assert.Nil(t, rc)
	})
}

func TestReadinessHandler(t *testing.T) {
	probe := func(t *testing.T, h http.HandlerFunc) (int, map[string]string) {
		t.Helper()
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	t.Run("without cache", func(t *testing.T) {
		code, body := probe(t, readinessHandler(nil))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}}}
		rc, err := connectRedis(context.Background(), cfg, logger.NewTestLogger(t))
		require.NoError(t, err)
		require.NotNil(t, rc)
		defer rc.Close()

		code, _ := probe(t, readinessHandler(rc))
		assert.Equal(t, http.StatusOK, code)

		mr.Close()
		code, body := probe(t, readinessHandler(rc))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", body["status"])
		assert.NotEmpty(t, body["error"])
	})
}
