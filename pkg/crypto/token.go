package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const (
	DefaultSecretLength = 32 // 256 bits
	fingerprintLength   = 12
)

// GenerateSecret returns byteLength random bytes, base64url encoded.
func GenerateSecret(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultSecretLength
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Fingerprint identifies a token in logs without revealing it.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return HashToken(token)[:fingerprintLength]
}
