package period

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestHandlerRouter(t *testing.T) http.Handler {
	t.Helper()

	svc, err := NewService(NewInMemoryStore())
	if err != nil {
		t.Fatalf("failed to build period service: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(svc, logger).Register(router)
	return router
}

func TestPeriodEndpoints(t *testing.T) {
	router := newTestHandlerRouter(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	putPeriod := func(t *testing.T, body any) *httptest.ResponseRecorder {
		t.Helper()
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		req := httptest.NewRequest(http.MethodPut, "/periods", bytes.NewReader(encoded))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("upsert and read back", func(t *testing.T) {
		rec := putPeriod(t, Period{Year: 2026, StartDate: now, ReportingDate: now.AddDate(0, 6, 0)})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		req := httptest.NewRequest(http.MethodGet, "/periods/2026", nil)
		getRec := httptest.NewRecorder()
		router.ServeHTTP(getRec, req)
		if getRec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", getRec.Code, getRec.Body.String())
		}
		var p Period
		if err := json.NewDecoder(getRec.Body).Decode(&p); err != nil {
			t.Fatalf("failed to decode period: %v", err)
		}
		if p.Year != 2026 || !p.ReportingDate.Equal(now.AddDate(0, 6, 0)) {
			t.Fatalf("unexpected period: %+v", p)
		}
	})

	t.Run("invalid window", func(t *testing.T) {
		rec := putPeriod(t, Period{Year: 2026, StartDate: now, ReportingDate: now})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/periods", bytes.NewReader([]byte("{nope")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown year", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/periods/1999", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("year must be numeric", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/periods/later", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
