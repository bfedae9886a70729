package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost 10 matches the hashes already present in the credential store.
const cost = 10

// Hash is CPU-bound; callers must not hold locks across it.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plaintext matches the stored hash. Comparison is
// constant-time inside bcrypt.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
