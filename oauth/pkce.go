package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// verifierBytes is the number of random bytes behind a code verifier.
// 96 bytes base64-encode to 128 characters, the maximum RFC 7636 allows.
const verifierBytes = 96

// GeneratePKCE generates a PKCE code verifier and its S256 challenge.
func GeneratePKCE() (verifier, challenge string, err error) {
	b := make([]byte, verifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	verifier = base64.RawURLEncoding.EncodeToString(b)
	return verifier, ChallengeS256(verifier), nil
}

// ChallengeS256 derives the S256 code challenge for a verifier:
// URL-safe base64 of its SHA-256 digest, without padding.
func ChallengeS256(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
