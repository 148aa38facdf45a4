// Package auth verifies API tokens at the HTTP boundary. Authorization policy
// (who may approve, who may convert) lives in an external collaborator; this
// package only establishes the actor identity and surfaces failures opaquely.
package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Token is a stored API credential. Secret holds a bcrypt hash, never the
// plaintext.
type Token struct {
	ID         string
	Actor      string
	SecretHash string
	Revoked    bool
}

// Repository loads API tokens.
type Repository interface {
	GetToken(ctx context.Context, id string) (*Token, error)
}

var errTokenNotFound = errors.New("auth: token not found")

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the pgx-backed token repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetToken(ctx context.Context, id string) (*Token, error) {
	var t Token
	err := r.pool.QueryRow(ctx, `SELECT id, actor, secret_hash, revoked FROM api_tokens WHERE id = $1`, id).
		Scan(&t.ID, &t.Actor, &t.SecretHash, &t.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}
