package handler

import (
	"regexp"
)

// Username and password shape rules. The services below the HTTP boundary
// accept whatever they are handed; all request validation happens here.
const (
	usernameMinLength = 3
	usernameMaxLength = 30
	passwordMinLength = 8
)

// usernameRegex permits a leading letter followed by letters, digits,
// and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername validates a username for registration.
// Returns an error message string if validation fails, or empty string if valid.
func ValidateUsername(username string) string {
	if username == "" {
		return "Username is required"
	}
	if len(username) < usernameMinLength {
		return "Username must be at least 3 characters"
	}
	if len(username) > usernameMaxLength {
		return "Username must be at most 30 characters"
	}
	if !usernameRegex.MatchString(username) {
		return "Username must start with a letter and contain only letters, numbers, and underscores"
	}
	return ""
}

// ValidatePassword validates a password for registration or rotation.
// Returns an error message string if validation fails, or empty string if valid.
func ValidatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < passwordMinLength {
		return "Password must be at least 8 characters"
	}
	return ""
}
