package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/retail-backoffice/internal/domain/auth"
	"github.com/xenking/retail-backoffice/internal/domain/party"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	h := &Handler{tokens: issuer}

	token, err := issuer.Issue("1", "jdoe", "STAFF", auth.KindEmployee)
	require.NoError(t, err)

	var got *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.Authenticate(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "jdoe", got.Username)
	assert.Equal(t, "STAFF", got.Role)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	h := &Handler{tokens: auth.NewIssuer([]byte("test-secret"), time.Hour)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Authenticate(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BadToken(t *testing.T) {
	h := &Handler{tokens: auth.NewIssuer([]byte("test-secret"), time.Hour)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.Authenticate(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	issuer := auth.NewIssuer([]byte("test-secret"), time.Hour)
	h := &Handler{tokens: issuer}
	mw := RequireRole(party.RoleSuperadmin, party.RoleAdmin)

	tests := []struct {
		role string
		want int
	}{
		{"SUPERADMIN", http.StatusOK},
		{"ADMIN", http.StatusOK},
		{"STAFF", http.StatusForbidden},
		{"CUSTOMER", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, err := issuer.Issue("1", "jdoe", tt.role, auth.KindEmployee)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			h.Authenticate(mw(okHandler())).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_NoClaims(t *testing.T) {
	mw := RequireRole(party.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
