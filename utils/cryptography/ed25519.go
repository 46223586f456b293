package cryptography

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	PRIVATE_KEY = "PRIVATE KEY"
	PUBLIC_KEY  = "PUBLIC KEY"
)

// GenerateEd25519KeyPair generates a new Ed25519 key pair and returns the PEM-encoded public and private keys.
func GenerateEd25519KeyPair() (string, string, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate Ed25519 key pair: %w", err)
	}

	privatePEM, err := EncodeEd25519PrivateKey(privateKey)
	if err != nil {
		return "", "", err
	}
	publicPEM, err := EncodeEd25519PublicKey(publicKey)
	if err != nil {
		return "", "", err
	}
	return publicPEM, privatePEM, nil
}

// EncodeEd25519PrivateKey renders the key as a PKCS#8 PEM block.
func EncodeEd25519PrivateKey(key ed25519.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: PRIVATE_KEY, Bytes: der})), nil
}

// EncodeEd25519PublicKey renders the key as a PKIX PEM block.
func EncodeEd25519PublicKey(key ed25519.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: PUBLIC_KEY, Bytes: der})), nil
}

// ParseEd25519PrivateKey decodes a PKCS#8 PEM private key. Escaped "\n"
// sequences are accepted so keys can be passed through environment variables.
func ParseEd25519PrivateKey(data []byte) (ed25519.PrivateKey, error) {
	block, err := decodeBlock(data, PRIVATE_KEY)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	privateKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("not a valid Ed25519 private key")
	}
	return privateKey, nil
}

// ParseEd25519PublicKey decodes a PKIX PEM public key.
func ParseEd25519PublicKey(data []byte) (ed25519.PublicKey, error) {
	block, err := decodeBlock(data, PUBLIC_KEY)
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	publicKey, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("not a valid Ed25519 public key")
	}
	return publicKey, nil
}

// LoadEd25519PrivateKey loads an Ed25519 private key from a PEM file.
func LoadEd25519PrivateKey(filePath string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	return ParseEd25519PrivateKey(data)
}

// PublicKeyPEM derives the PEM-encoded public half of a private key.
func PublicKeyPEM(key ed25519.PrivateKey) (string, error) {
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return "", errors.New("not a valid Ed25519 private key")
	}
	return EncodeEd25519PublicKey(pub)
}

func decodeBlock(data []byte, want string) (*pem.Block, error) {
	if !strings.Contains(string(data), "\n") && strings.Contains(string(data), `\n`) {
		data = []byte(strings.ReplaceAll(string(data), `\n`, "\n"))
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing %s", strings.ToLower(want))
	}
	if block.Type != want {
		return nil, fmt.Errorf("invalid PEM block type: expected %q, got %q", want, block.Type)
	}
	return block, nil
}
