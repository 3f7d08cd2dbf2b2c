package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/mergington/internal/config"
	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/notify"
	"example.com/mergington/internal/registry"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Mergington</h1>"), 0o600))
	return config.Config{
		HTTP:    config.HTTPConfig{CORSOrigin: "http://localhost:5173"},
		Static:  config.StaticConfig{Dir: dir},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func testHandler(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	seed, err := registry.DefaultSeed()
	require.NoError(t, err)
	repo, err := registry.NewInMemoryRepository(seed)
	require.NoError(t, err)
	return newHTTPHandler(cfg, domain.NewService(repo, nil), zaptest.NewLogger(t))
}

func TestHTTPHandlerServesRedirectAndStaticEntry(t *testing.T) {
	h := testHandler(t, testConfig(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	require.Contains(t, rr.Header().Get("Location"), "/static/index.html")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/index.html", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Mergington")
}

func TestHTTPHandlerExposesMetricsWhenEnabled(t *testing.T) {
	cfg := testConfig(t)
	h := testHandler(t, cfg)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "go_goroutines"))

	cfg.Metrics.Enabled = false
	h = testHandler(t, cfg)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildNotifier(t *testing.T) {
	logger := zaptest.NewLogger(t)

	n, closeFn := buildNotifier(config.NotifyConfig{}, logger)
	closeFn()
	require.IsType(t, notify.NoopNotifier{}, n)

	n, closeFn = buildNotifier(config.NotifyConfig{
		WebhookURL: "http://hooks.local/roster",
		Timeout:    time.Second,
	}, logger)
	closeFn()
	fanout, ok := n.(*notify.Fanout)
	require.True(t, ok)
	require.Equal(t, 1, fanout.Len())
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NotNil(t, cmd.Flags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("addr"))
}
