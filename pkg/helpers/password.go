package helpers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// PasswordHasher turns raw passwords into stored hashes and checks them.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Matches(hash, plain string) bool
	// NeedsRehash reports whether a stored hash was made by an older scheme.
	NeedsRehash(hash string) bool
}

// SHA256Hasher is the unsalted, deterministic hasher existing user rows were written with.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(plain string) (string, error) {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Matches(hash, plain string) bool {
	want, _ := h.Hash(plain)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(want)) == 1
}

func (SHA256Hasher) NeedsRehash(string) bool { return false }

// BcryptHasher is a salted slow hasher. Rows written by SHA256Hasher before
// the switch still verify and are flagged for rehashing.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Matches(hash, plain string) bool {
	if !isBcrypt(hash) {
		return SHA256Hasher{}.Matches(hash, plain)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (BcryptHasher) NeedsRehash(hash string) bool {
	return !isBcrypt(hash)
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2")
}

// NewPasswordHasher picks a hasher by name.
func NewPasswordHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch strings.ToLower(name) {
	case "", HasherSHA256:
		return SHA256Hasher{}, nil
	case HasherBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
