package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an account password with bcrypt at the configured
// cost. The hash doubles as state input for single-use account tokens, so
// changing the password also invalidates outstanding reset links.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
