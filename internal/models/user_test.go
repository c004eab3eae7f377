package models

import (
	"testing"
	"time"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Now()

	live := RefreshToken{ExpiresAt: now.Add(time.Hour)}
	if !live.Usable(now) {
		t.Error("unexpired, unrevoked token should be usable")
	}

	expired := RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	if expired.Usable(now) {
		t.Error("expired token should not be usable")
	}

	revoked := RefreshToken{ExpiresAt: now.Add(time.Hour), IsRevoked: true}
	if revoked.Usable(now) {
		t.Error("revoked token should not be usable")
	}
}

func TestRefreshTokenRevoke(t *testing.T) {
	token := RefreshToken{ExpiresAt: time.Now().Add(time.Hour)}
	token.Revoke()

	if !token.IsRevoked {
		t.Error("Revoke did not set IsRevoked")
	}
	if token.Usable(time.Now()) {
		t.Error("revoked token reports usable")
	}
	// Expiry is backdated so either check alone rejects a replay.
	if token.ExpiresAt.After(time.Now()) {
		t.Error("Revoke did not backdate expiry")
	}
}

func TestFullName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
	}
	for _, tc := range cases {
		u := &User{FirstName: tc.first, LastName: tc.last}
		if got := u.FullName(); got != tc.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}
