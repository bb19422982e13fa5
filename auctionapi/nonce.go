package auctionapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// generateSecureRandomBytes generates cryptographically secure random bytes
func generateSecureRandomBytes(length int) ([]byte, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("entropy generation failed: %w", err)
	}
	return randomBytes, nil
}

// NewNonce returns 256 bits of entropy, hex encoded, for transcript hashing.
func NewNonce() (string, error) {
	randomBytes, err := generateSecureRandomBytes(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate secure nonce - %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}
