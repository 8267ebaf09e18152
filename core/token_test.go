package core

import (
	"testing"
	"time"
)

func TestScopeSet(t *testing.T) {
	t.Run("parse and string round trip", func(t *testing.T) {
		set := ParseScopes("openid news offline")
		if len(set) != 3 {
			t.Fatalf("parsed %d scopes", len(set))
		}
		// Wire form is sorted.
		if got := set.String(); got != "news offline openid" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("subset", func(t *testing.T) {
		have := NewScopeSet(ScopeNews, ScopeOffline, ScopeOpenID)
		if !NewScopeSet(ScopeNews).SubsetOf(have) {
			t.Error("news should be a subset")
		}
		if NewScopeSet(ScopeChat).SubsetOf(have) {
			t.Error("chat should not be a subset")
		}
		if !NewScopeSet().SubsetOf(have) {
			t.Error("the empty set is a subset of everything")
		}
	})

	t.Run("union does not mutate", func(t *testing.T) {
		a := NewScopeSet(ScopeNews)
		b := NewScopeSet(ScopeChat)
		u := a.Union(b)
		if len(a) != 1 || len(b) != 1 {
			t.Error("union mutated an operand")
		}
		if len(u) != 2 {
			t.Errorf("union has %d scopes", len(u))
		}
	})
}

func TestTokenValid(t *testing.T) {
	now := time.Now()
	tok := &Token{
		AccessToken: "tok",
		Scopes:      NewScopeSet(ScopeNews, ScopeOffline, ScopeOpenID),
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}

	tests := []struct {
		name     string
		tok      *Token
		now      time.Time
		required ScopeSet
		want     bool
	}{
		{"fresh with scope", tok, now, NewScopeSet(ScopeNews), true},
		{"fresh no scopes required", tok, now, nil, true},
		{"missing scope", tok, now, NewScopeSet(ScopeChat), false},
		{"expired", tok, now.Add(2 * time.Hour), NewScopeSet(ScopeNews), false},
		{"inside safety margin", tok, now.Add(time.Hour - expirySkew), NewScopeSet(ScopeNews), false},
		{"just outside margin", tok, now.Add(time.Hour - expirySkew - time.Second), NewScopeSet(ScopeNews), true},
		{"nil token", nil, now, nil, false},
		{"empty access token", &Token{ExpiresAt: now.Add(time.Hour)}, now, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.Valid(tt.now, tt.required); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenCacheReplacement(t *testing.T) {
	var c tokenCache
	if c.get() != nil {
		t.Fatal("expected empty cache")
	}

	tok := &Token{AccessToken: "a"}
	c.set(tok)
	if c.get() != tok {
		t.Error("expected the stored token")
	}

	c.set(nil)
	if c.get() != nil {
		t.Error("expected the cache to be cleared")
	}
}
