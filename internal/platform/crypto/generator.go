// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureRandomString creates a cryptographically secure random string.
// n is the number of bytes of randomness; the resulting string is longer due
// to base64 encoding.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NewSessionHandle generates an opaque session handle. 32 bytes of entropy
// keeps handles unguessable without making Authorization headers unwieldy.
func NewSessionHandle() (string, error) {
	return GenerateSecureRandomString(32)
}
