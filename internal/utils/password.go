package utils

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash.  A cost outside bcrypt's accepted
// range is replaced by bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// VerifyPassword compares a bcrypt hash with a plain password.  An empty
// hash is compared against a throwaway hash so that unknown accounts take
// as long to reject as wrong passwords; it always reports false.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		dummyOnce.Do(func() {
			dummyHash, _ = bcrypt.GenerateFromPassword([]byte("spacelink-dummy"), bcrypt.DefaultCost)
		})
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
