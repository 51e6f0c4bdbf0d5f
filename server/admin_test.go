package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/tuio/tuio"
)

func TestAttachAdminRoutesExposesStats(t *testing.T) {
	srv := New("tuio")
	mux := http.NewServeMux()
	srv.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/tuio-stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "CursorCount")
}

func TestAttachAdminRoutesShutdownTriggersGoodbye(t *testing.T) {
	srv := New("tuio")
	srv.CreateCursor(tuio.Position{X: 0, Y: 0})
	mux := http.NewServeMux()
	srv.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodPost, "/debug/tuio-shutdown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, srv.Stats().CursorCount)
}

func TestAttachAdminRoutesShutdownRejectsGet(t *testing.T) {
	srv := New("tuio")
	mux := http.NewServeMux()
	srv.AttachAdminRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/debug/tuio-shutdown", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
