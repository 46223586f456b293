package cryptography

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseKeyPair(t *testing.T) {
	pubPEM, privPEM, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	priv, err := ParseEd25519PrivateKey([]byte(privPEM))
	require.NoError(t, err)
	pub, err := ParseEd25519PublicKey([]byte(pubPEM))
	require.NoError(t, err)

	derived, err := PublicKeyPEM(priv)
	require.NoError(t, err)
	assert.Equal(t, pubPEM, derived)
	assert.Equal(t, Fingerprint(pub), Fingerprint(priv.Public().(ed25519.PublicKey)))
}

func TestParseEscapedNewlines(t *testing.T) {
	_, privPEM, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	escaped := strings.ReplaceAll(privPEM, "\n", `\n`)
	_, err = ParseEd25519PrivateKey([]byte(escaped))
	assert.NoError(t, err)
}

func TestParseRejectsWrongBlock(t *testing.T) {
	pubPEM, privPEM, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	_, err = ParseEd25519PrivateKey([]byte(pubPEM))
	assert.Error(t, err)
	_, err = ParseEd25519PublicKey([]byte(privPEM))
	assert.Error(t, err)
	_, err = ParseEd25519PublicKey([]byte("garbage"))
	assert.Error(t, err)
}

func TestLoadPrivateKeyFromFile(t *testing.T) {
	_, privPEM, err := GenerateEd25519KeyPair()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "service.pem")
	require.NoError(t, os.WriteFile(path, []byte(privPEM), 0600))

	_, err = LoadEd25519PrivateKey(path)
	assert.NoError(t, err)

	_, err = LoadEd25519PrivateKey(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	pubA, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	pubB, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	assert.Equal(t, Fingerprint(pubA), Fingerprint(pubA))
	assert.NotEqual(t, Fingerprint(pubA), Fingerprint(pubB))
	assert.Len(t, Fingerprint(pubA), 16)
}
