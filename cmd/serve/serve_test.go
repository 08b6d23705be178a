package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/chainspec"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/config"
)

func TestService(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dev.wasm"), []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, 0o600))

	cfg := &config.ServerConfig{
		Endpoint: "127.0.0.1:0",
		Build: &config.BuildConfig{
			RuntimeDir: dir,
			Profiles:   []common.Profile{common.ProfileDevelopment, common.ProfileMain},
		},
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewService(ctx, cfg)
	require.NoError(t, err)
	defer s.Shutdown()

	srv := httptest.NewServer(s.server.Handler)
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/v1/chainspecs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []chainspec.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 2)

	// Profiles that are not configured are not served.
	resp, err = http.Get(srv.URL + "/v1/chainspecs/local")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestServiceMissingImage(t *testing.T) {
	cfg := &config.ServerConfig{
		Endpoint: "127.0.0.1:0",
		Build:    &config.BuildConfig{RuntimeDir: t.TempDir()},
	}
	_, err := NewService(context.Background(), cfg)
	require.ErrorIs(t, err, chainspec.ErrMissingRuntimeImage)
}
