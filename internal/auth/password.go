package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// HashPassword generates a salted Argon2id hash of the password.
func HashPassword(password string) (hash, salt string, err error) {
	s := make([]byte, 16)
	if _, err := rand.Read(s); err != nil {
		return "", "", err
	}
	h := argon2.IDKey([]byte(password), s, 1, 64*1024, 4, 32)
	return base64.StdEncoding.EncodeToString(h), base64.StdEncoding.EncodeToString(s), nil
}

// VerifyPassword compares a password with a salted hash in constant time.
func VerifyPassword(password, salt, hash string) (bool, error) {
	decodedSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	decodedHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}
	candidate := argon2.IDKey([]byte(password), decodedSalt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(decodedHash, candidate) == 1, nil
}
