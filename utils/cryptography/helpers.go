package cryptography

import (
	"crypto/ed25519"
	"encoding/base64"

	"golang.org/x/crypto/blake2s"
)

// Fingerprint returns a short stable identifier for a public key, used as
// the "kid" of issued tokens and in logs instead of the key material.
func Fingerprint(key ed25519.PublicKey) string {
	sum := blake2s.Sum256(key)
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
