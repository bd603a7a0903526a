package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Token sizes in random bytes before hex encoding.
const (
	// SessionTokenBytes yields a 64-character token (256 bits of entropy).
	SessionTokenBytes = 32
	// InviteCodeBytes yields a short 6-character code like "ab12cd", sized
	// for humans to pass along rather than for guessing resistance.
	InviteCodeBytes = 3
)

// GenerateSessionToken returns a new opaque session token: hex-encoded
// output of a cryptographically secure random source.
func GenerateSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

// GenerateInviteCode returns a new short invite code.
func GenerateInviteCode() (string, error) {
	return randomHex(InviteCodeBytes)
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
