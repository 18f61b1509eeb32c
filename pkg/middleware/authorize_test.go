package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithClaims(claims *UserClaims) *http.Request {
	r := httptest.NewRequest("GET", "/admin/analytics", nil)
	if claims == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}

func callGuard(guard func(http.HandlerFunc) http.HandlerFunc, r *http.Request) (int, bool) {
	reached := false
	rec := httptest.NewRecorder()
	guard(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})(rec, r)
	return rec.Code, reached
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole("admin", "gad_officer")

	code, reached := callGuard(guard, requestWithClaims(&UserClaims{Role: "gad_officer"}))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)

	code, reached = callGuard(guard, requestWithClaims(&UserClaims{Role: "user"}))
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, reached)

	code, reached = callGuard(guard, requestWithClaims(nil))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestRequireOffice(t *testing.T) {
	guard := RequireOffice("GAD")

	code, reached := callGuard(guard, requestWithClaims(&UserClaims{Role: "gad_officer", Office: "GAD"}))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)

	code, reached = callGuard(guard, requestWithClaims(&UserClaims{Role: "gad_officer", Office: "VAWC"}))
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, reached)

	// Admin accounts are not bound to one office.
	code, reached = callGuard(guard, requestWithClaims(&UserClaims{Role: "admin", Office: ""}))
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, reached)

	code, reached = callGuard(guard, requestWithClaims(nil))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, reached)
}

func TestAuthMiddlewarePassesClaimsThroughGuards(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &UserClaims{
		UserID: "u-1",
		Email:  "officer@tup.edu.ph",
		Role:   "gad_officer",
		Office: "GAD",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	var seen *UserClaims
	handler := AuthMiddleware(RequireRole("gad_officer")(RequireOffice("GAD")(
		func(w http.ResponseWriter, r *http.Request) {
			seen, _ = ClaimsFromRequest(r)
			w.WriteHeader(http.StatusOK)
		})))

	r := httptest.NewRequest("GET", "/admin/analytics", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "officer@tup.edu.ph", seen.Email)

	// No token at all is rejected before any guard runs.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/admin/analytics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
