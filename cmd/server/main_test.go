package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kvr/userdb/internal/config"
	"kvr/userdb/internal/handlers"
	"kvr/userdb/internal/repositories"
	"kvr/userdb/internal/testhelpers"

	"go.uber.org/zap"
)

func newRouters(t *testing.T) (http.Handler, http.Handler) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	cfg := &config.Config{APIKey: "secret"}

	userRepo := &repositories.UserRepository{DB: db}
	adminRepo := &repositories.AdminRepository{DB: db}

	public := publicRouter(handlers.NewUserHandler(userRepo, logger), cfg, logger)
	admin := adminRouter(handlers.NewAdminHandler(userRepo, adminRepo, logger), adminRepo, logger)
	return public, admin
}

func TestNewServer(t *testing.T) {
	srv := newServer(":5000", http.NewServeMux())
	if srv.Addr != ":5000" {
		t.Fatalf("expected addr :5000, got %s", srv.Addr)
	}
	if srv.ReadTimeout != 15*time.Second || srv.WriteTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: read=%v write=%v", srv.ReadTimeout, srv.WriteTimeout)
	}
}

func TestPublicRouter(t *testing.T) {
	public, _ := newRouters(t)

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "ok" {
			t.Fatalf("expected body ok, got %q", rec.Body.String())
		}
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("user routes require the API key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		public.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/alice", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without key, got %d", rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
		req.Header.Set("X-API-Key", "secret")
		rec = httptest.NewRecorder()
		public.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for a missing user, got %d", rec.Code)
		}
	})
}

func TestAdminRouter(t *testing.T) {
	_, admin := newRouters(t)

	t.Run("healthz", func(t *testing.T) {
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("status is open", func(t *testing.T) {
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("protected routes gate on the stored password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fields", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 before a password exists, got %d", rec.Code)
		}

		set := httptest.NewRequest(http.MethodPost, "/api/admin/set",
			bytes.NewBufferString(`{"password":"hunter2"}`))
		rec = httptest.NewRecorder()
		admin.ServeHTTP(rec, set)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected bootstrap to succeed, got %d: %s", rec.Code, rec.Body.String())
		}

		req := httptest.NewRequest(http.MethodGet, "/api/fields", nil)
		req.SetBasicAuth("admin", "hunter2")
		rec = httptest.NewRecorder()
		admin.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with the stored password, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
