// Package creds handles password hashing and verification.
package creds

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plaintext passwords into stored hashes and checks
// candidates against them.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) bool
}

// BcryptHasher is the default Hasher.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
