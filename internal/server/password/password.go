// Package password hashes and verifies account secrets with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the interface the session manager depends on.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// MaxInputBytes is the longest secret bcrypt reads; later bytes are ignored
// by the algorithm.
const MaxInputBytes = 72

// Bcrypt implements Hasher. The zero value uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{Cost: cost}
}

// Hash returns a salted bcrypt hash of plain. Inputs longer than 72 bytes
// are rejected rather than silently truncated.
func (b *Bcrypt) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plain matches hash. Malformed hashes and
// mismatches yield false. Input longer than MaxInputBytes never matches,
// though a comparison still runs so the rejection costs the same.
func (b *Bcrypt) Verify(plain, hash string) bool {
	if len(plain) > MaxInputBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain[:MaxInputBytes]))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
