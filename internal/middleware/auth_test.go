package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/otarbekov/tradequest/configs"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/middleware"
)

const testSecret = "test-secret"

func setup(t *testing.T) {
	t.Helper()

	logger.Init("dev")
	configs.AppConfig.JWT.SECRET = testSecret
}

func signToken(t *testing.T, secret string, sub any, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protected(t *testing.T, gotUserID *uint, called *bool) http.Handler {
	t.Helper()

	return middleware.Authenticated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserID(r.Context())
		if !ok {
			t.Error("userID missing from context")
		}
		*gotUserID = id
		*called = true
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticatedCookie(t *testing.T) {
	setup(t)

	var userID uint
	var called bool
	handler := protected(t, &userID, &called)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{
		Name:  middleware.AuthCookieName,
		Value: signToken(t, testSecret, 42, time.Now().Add(time.Hour)),
	})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("handler not called, status = %d", rec.Code)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestAuthenticatedBearerFallback(t *testing.T) {
	setup(t)

	var userID uint
	var called bool
	handler := protected(t, &userID, &called)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 7, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("handler not called, status = %d", rec.Code)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
}

func TestAuthenticatedRejections(t *testing.T) {
	setup(t)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{
			name:  "no credentials",
			setup: func(r *http.Request) {},
		},
		{
			name: "malformed header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", 42, time.Now().Add(time.Hour)))
			},
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, 42, time.Now().Add(-time.Hour)))
			},
		},
		{
			name: "non-numeric subject",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "abc", time.Now().Add(time.Hour)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var userID uint
			var called bool
			handler := protected(t, &userID, &called)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if called {
				t.Fatal("handler called for unauthenticated request")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
