// Package secrets seals supplier basic-auth passwords at rest so a database
// dump alone does not leak feed credentials.
package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceLength = 24

var ErrMalformed = errors.New("sealed value is malformed")

type Box struct {
	key [32]byte
}

func NewBox(key [32]byte) *Box {
	return &Box{key: key}
}

// Seal encrypts plaintext with a random nonce; the nonce is prepended to the
// returned ciphertext.
func (b *Box) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceLength {
		return "", ErrMalformed
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	plaintext, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, &b.key)
	if !ok {
		return "", errors.New("open sealed value: authentication failed")
	}
	return string(plaintext), nil
}
