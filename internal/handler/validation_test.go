// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"valid username", "alice", ""},
		{"valid with digits", "alice42", ""},
		{"valid with underscore", "alice_b", ""},
		{"valid mixed case", "AliceB", ""},
		{"minimum length", "abc", ""},
		{"maximum length", strings.Repeat("a", 30), ""},
		{"empty", "", "Username is required"},
		{"too short", "ab", "Username must be at least 3 characters"},
		{"too long", strings.Repeat("a", 31), "Username must be at most 30 characters"},
		{"starts with digit", "1alice", "Username must start with a letter and contain only letters, numbers, and underscores"},
		{"starts with underscore", "_alice", "Username must start with a letter and contain only letters, numbers, and underscores"},
		{"contains hyphen", "alice-b", "Username must start with a letter and contain only letters, numbers, and underscores"},
		{"contains space", "alice b", "Username must start with a letter and contain only letters, numbers, and underscores"},
		{"contains unicode", "alïce", "Username must start with a letter and contain only letters, numbers, and underscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateUsername(tt.username)
			if got != tt.want {
				t.Errorf("ValidateUsername(%q) = %q, want %q", tt.username, got, tt.want)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"valid password", "correct-horse", ""},
		{"minimum length", "12345678", ""},
		{"long password", strings.Repeat("x", 128), ""},
		{"empty", "", "Password is required"},
		{"too short", "1234567", "Password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			if got != tt.want {
				t.Errorf("ValidatePassword(%q) = %q, want %q", tt.password, got, tt.want)
			}
		})
	}
}
