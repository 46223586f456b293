package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDString generates a random (v4) UUID string
func GenerateUUIDString() string {
	return uuid.New().String()
}

// GenerateUUID generates a random (v4) UUID
func GenerateUUID() uuid.UUID {
	return uuid.New()
}

// GenerateMessageID returns a correlation id. Version 7 UUIDs sort by creation
// time, which keeps ids readable in logs; it falls back to v4 on failure.
func GenerateMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// JoinComponentsToID joins multiple strings into a single ID
func JoinComponentsToID(components ...string) string {
	return strings.Join(components, "-")
}

// GenerateTokenID generates a random token ID
func GenerateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("error generating token ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
