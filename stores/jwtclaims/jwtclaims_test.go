package jwtclaims_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/stores/jwtclaims"
)

var secret = []byte("test-secret")

func TestVerifier_Parse(t *testing.T) {
	iss := jwtclaims.NewIssuer(secret, "permguard-test", time.Minute)
	v := jwtclaims.NewVerifier(secret, "permguard-test", nil)

	token, err := iss.Issue("alice", []string{"editor"}, []string{"posts.write"})
	require.NoError(t, err)

	claims, err := v.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"editor"}, claims.Roles)
	assert.Equal(t, []string{"posts.write"}, claims.Permissions)
}

func TestVerifier_ParseRejects(t *testing.T) {
	v := jwtclaims.NewVerifier(secret, "permguard-test", nil)

	wrongKey, err := jwtclaims.NewIssuer([]byte("other"), "permguard-test", time.Minute).Issue("alice", nil, nil)
	require.NoError(t, err)
	wrongIssuer, err := jwtclaims.NewIssuer(secret, "someone-else", time.Minute).Issue("alice", nil, nil)
	require.NoError(t, err)
	expired, err := jwtclaims.NewIssuer(secret, "permguard-test", -time.Minute).Issue("alice", nil, nil)
	require.NoError(t, err)
	noSubject, err := jwtclaims.NewIssuer(secret, "permguard-test", time.Minute).Issue("", nil, nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key":    wrongKey,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"no subject":   noSubject,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Parse(token)
			assert.ErrorIs(t, err, jwtclaims.ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	iss := jwtclaims.NewIssuer(secret, "", time.Minute)
	v := jwtclaims.NewVerifier(secret, "", nil)

	var (
		gotSubject string
		gotPolicy  permguard.UserPolicy
	)
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = permguard.SubjectFromContext(r.Context())
		var err error
		gotPolicy, err = jwtclaims.Handler{}.GetUserPolicy(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := iss.Issue("carol", []string{"support"}, []string{"orders.cancel"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "carol", gotSubject)
		assert.True(t, gotPolicy.HasPermission("orders.cancel"))
		assert.True(t, gotPolicy.HasRole("support"))
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		gotSubject = ""
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "carol", gotSubject)
	})

	t.Run("no header is anonymous", func(t *testing.T) {
		gotSubject = "stale"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, gotSubject)
		assert.Empty(t, gotPolicy.Permissions())
	})

	for name, header := range map[string]string{
		"bad signature": "Bearer " + token + "x",
		"wrong scheme":  "Basic Y2Fyb2w6cHc=",
		"empty bearer":  "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestHandler_WithoutClaims(t *testing.T) {
	p, err := jwtclaims.Handler{}.GetUserPolicy(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.Roles())
}
