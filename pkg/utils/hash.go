package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// SumSHA256 returns the SHA-256 checksum of the provided data.
func SumSHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HashToken returns the hex SHA-256 of a raw one-time token. Only hashes are stored.
func HashToken(raw string) string {
	sum := SumSHA256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewToken returns a URL-safe random token of n random bytes.
func NewToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
