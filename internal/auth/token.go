package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
)

// TokenFilter accepts requests carrying one of a fixed set of bearer tokens.
// Tokens are kept as SHA-256 digests and compared in constant time.
type TokenFilter struct {
	digests [][]byte
}

func NewTokenFilter(tokens ...string) *TokenFilter {
	f := &TokenFilter{}
	for _, t := range tokens {
		if t == "" {
			continue
		}
		sum := sha256.Sum256([]byte(t))
		f.digests = append(f.digests, sum[:])
	}
	return f
}

func (f *TokenFilter) Authorize(_ context.Context, r *http.Request) (bool, error) {
	token, ok := BearerToken(r)
	if !ok {
		return false, nil
	}
	sum := sha256.Sum256([]byte(token))

	match := 0
	for _, d := range f.digests {
		match |= subtle.ConstantTimeCompare(sum[:], d)
	}
	return match == 1, nil
}

// HashToken returns the hex SHA-256 digest stored for a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns a new random 256-bit token, hex encoded.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var _ Filter = (*TokenFilter)(nil)
