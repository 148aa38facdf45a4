package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

type mockTokenRepo struct {
	tokens map[string]*Token
}

func (m *mockTokenRepo) GetToken(ctx context.Context, id string) (*Token, error) {
	t, ok := m.tokens[id]
	if !ok {
		return nil, errTokenNotFound
	}
	return t, nil
}

func newTestMiddleware(t *testing.T) Middleware {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	revokedHash, err := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.MinCost)
	require.NoError(t, err)
	return Middleware{Repo: &mockTokenRepo{tokens: map[string]*Token{
		"tok1":    {ID: "tok1", Actor: "sales.lead", SecretHash: string(hash)},
		"revoked": {ID: "revoked", Actor: "gone", SecretHash: string(revokedHash), Revoked: true},
	}}}
}

func requireTokenProbe(actorOut *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*actorOut = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func doAuth(mw Middleware, header string) (*httptest.ResponseRecorder, string) {
	var actor string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw.RequireToken(requireTokenProbe(&actor)).ServeHTTP(rec, req)
	return rec, actor
}

func TestRequireTokenValid(t *testing.T) {
	rec, actor := doAuth(newTestMiddleware(t), "Bearer tok1.s3cret")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sales.lead", actor)
}

func TestRequireTokenFailuresAreOpaque(t *testing.T) {
	mw := newTestMiddleware(t)
	headers := []string{
		"",
		"Bearer ",
		"Bearer garbage",
		"Bearer tok1.wrong",
		"Bearer unknown.s3cret",
		"Bearer revoked.old",
	}
	var bodies []string
	for _, h := range headers {
		rec, actor := doAuth(mw, h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		assert.Empty(t, actor)
		bodies = append(bodies, rec.Body.String())
	}
	// Every failure mode returns the identical payload.
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestRequireTokenDisabled(t *testing.T) {
	mw := Middleware{Disabled: true}
	rec, actor := doAuth(mw, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "dev", actor)
}
