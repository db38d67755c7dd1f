package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Workspace API tokens are random 256-bit values shown once at creation;
// only the SHA-256 hash is persisted.

const tokenPrefix = "fg_"

func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
