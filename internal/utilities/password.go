package utilities

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether password matches the bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
