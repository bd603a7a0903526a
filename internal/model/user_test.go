package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUserJSONOmitsNothingSensitive(t *testing.T) {
	u := User{
		Username:  "alice",
		IsAdmin:   true,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"username":"alice"`) {
		t.Errorf("JSON missing username: %s", s)
	}
	if !strings.Contains(s, `"is_admin":true`) {
		t.Errorf("JSON missing is_admin: %s", s)
	}
}

func TestInviteExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiry",
			expiresAt: now.Add(time.Hour),
			want:      false,
		},
		{
			name:      "past expiry",
			expiresAt: now.Add(-time.Hour),
			want:      true,
		},
		{
			name:      "exactly now",
			expiresAt: now,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Invite{Code: "ab12cd", ExpiresAt: tt.expiresAt}
			if got := i.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIdleSince(t *testing.T) {
	now := time.Now()
	s := &Session{Token: "tok", Username: "alice", LastActive: now.Add(-2 * time.Hour)}

	if got := s.IdleSince(now); got != 2*time.Hour {
		t.Errorf("IdleSince() = %v, want %v", got, 2*time.Hour)
	}
}
