package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "fitness.test"}

func signed(t *testing.T, subject string) string {
	t.Helper()
	token, err := Sign(Claims{
		Subject:   subject,
		TenantID:  "tenant-1",
		Scopes:    map[string]struct{}{"activities:read": {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}, testConfig)
	require.NoError(t, err)
	return token
}

func TestSignAndParseRoundTrip(t *testing.T) {
	claims, err := Parse(signed(t, "user-1"), testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "tenant-1", claims.TenantID)
	require.True(t, claims.HasScope("activities:read"))
	require.False(t, claims.HasScope("activities:write"))
	require.True(t, claims.HasAnyScope("activities:write", "activities:read"))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	_, err := Parse(signed(t, "user-1"), Config{Secret: testConfig.Secret, Issuer: "other"})
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddlewareReadsCookieWhenAllowed(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		token, ok := TokenFromContext(r.Context())
		require.True(t, ok)
		require.NotEmpty(t, token)
		w.WriteHeader(http.StatusNoContent)
	})

	mw := Middleware{Config: testConfig, AllowCookie: true}
	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed(t, "user-9")})
	rr := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "user-9", seen.Subject)
}

func TestMiddlewareIgnoresCookieByDefault(t *testing.T) {
	mw := NewMiddleware(testConfig, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signed(t, "user-9")})
	rr := httptest.NewRecorder()
	mw.Wrap(http.NotFoundHandler()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddlewareSkipper(t *testing.T) {
	mw := NewMiddleware(testConfig, func(r *http.Request) bool { return r.URL.Path == "/healthz" })
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
