package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength  = 32
	timeCost    = 1
	memoryCost  = 64 * 1024
	parallelism = 4
	keyLength   = 32
)

func generateSalt() ([]byte, error) {
	b := make([]byte, saltLength)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// hashPassword returns the base64 argon2id hash and salt.
func hashPassword(password string) (hash, salt string, err error) {
	raw, err := generateSalt()
	if err != nil {
		return "", "", err
	}
	key := argon2.IDKey([]byte(password), raw, timeCost, memoryCost, parallelism, keyLength)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw), nil
}

func verifyPassword(password, hash, salt string) bool {
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(password), raw, timeCost, memoryCost, parallelism, keyLength)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
