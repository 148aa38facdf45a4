package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateToken mints a new API credential. The returned plaintext is the
// bearer value (`id.secret`) handed to the caller exactly once; only the
// bcrypt hash is stored.
func GenerateToken(actor string) (Token, string, error) {
	id := uuid.NewString()
	secret := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Token{}, "", err
	}
	return Token{
		ID:         id,
		Actor:      actor,
		SecretHash: string(hash),
	}, id + "." + secret, nil
}
