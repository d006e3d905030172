package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"itsg33/internal/platform/middleware"
	"itsg33/pkg/testutil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	testutil.Given(t, "the request ID middleware", func(t *testing.T) {
		var captured string
		wrapped := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = middleware.GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		testutil.When(t, "the request carries no X-Request-ID", func(t *testing.T) {
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			testutil.Then(t, "a fresh ID is generated and echoed", func(t *testing.T) {
				if captured == "" {
					t.Fatal("expected a generated request ID")
				}
				if got := rec.Header().Get("X-Request-ID"); got != captured {
					t.Fatalf("expected response header %q, got %q", captured, got)
				}
			})
		})

		testutil.When(t, "the request carries an inbound X-Request-ID", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "upstream-123")
			wrapped.ServeHTTP(httptest.NewRecorder(), req)

			testutil.Then(t, "the inbound ID is honored", func(t *testing.T) {
				if captured != "upstream-123" {
					t.Fatalf("expected upstream-123, got %q", captured)
				}
			})
		})
	})
}

func TestRequireAdminToken(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	wrapped := middleware.RequireAdminToken("secret", logger)(okHandler())

	testutil.Given(t, "an endpoint guarded by the admin token", func(t *testing.T) {
		testutil.When(t, "the token is missing", func(t *testing.T) {
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

			testutil.Then(t, "the request is rejected", func(t *testing.T) {
				if rec.Code != http.StatusForbidden {
					t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
				}
			})
		})

		testutil.When(t, "the token matches", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("X-Admin-Token", "secret")
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			testutil.Then(t, "the request passes through", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})
	})
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	wrapped := middleware.Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestContentTypeJSON(t *testing.T) {
	wrapped := middleware.ContentTypeJSON(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = 12
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
