package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarhs-io/yarhs/internal/config"
	"github.com/yarhs-io/yarhs/internal/logwriter"
	"github.com/yarhs-io/yarhs/internal/xds"
)

func TestAccessLogMiddlewareWritesLineWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")
	logs, err := logwriter.New(path, "")
	require.NoError(t, err)
	defer logs.Close()

	store := xds.NewStore(config.Base{Logging: config.Logging{AccessLog: true, AccessLogFormat: "combined"}})

	handler := AccessLogMiddleware(store, logs, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	req.RemoteAddr = "203.0.113.9:54321"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "203.0.113.9")
	assert.Contains(t, string(data), `"GET /index.html HTTP/1.1"`)
	assert.Contains(t, string(data), "200 2")
}

func TestAccessLogMiddlewareSkipsWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access.log")
	logs, err := logwriter.New(path, "")
	require.NoError(t, err)
	defer logs.Close()

	store := xds.NewStore(config.Base{Logging: config.Logging{AccessLog: false}})

	handler := AccessLogMiddleware(store, logs, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
