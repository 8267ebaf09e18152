package core

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Scope names a capability a token authorizes.
type Scope string

// Scopes understood by the AskNews platform.
const (
	ScopeNews      Scope = "news"
	ScopeStories   Scope = "stories"
	ScopeChat      Scope = "chat"
	ScopeAnalytics Scope = "analytics"
	ScopeForecast  Scope = "forecast"
	ScopeWebSearch Scope = "websearch"

	// ScopeOffline and ScopeOpenID are requested on every exchange in
	// addition to the caller's scopes.
	ScopeOffline Scope = "offline"
	ScopeOpenID  Scope = "openid"
)

// ScopeSet is an unordered set of scopes.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a ScopeSet from the given scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	s := make(ScopeSet, len(scopes))
	for _, sc := range scopes {
		s[sc] = struct{}{}
	}
	return s
}

// ParseScopes parses a space-separated scope string as returned by the
// token endpoint.
func ParseScopes(s string) ScopeSet {
	set := make(ScopeSet)
	for _, f := range strings.Fields(s) {
		set[Scope(f)] = struct{}{}
	}
	return set
}

// Contains reports whether the set includes the given scope.
func (s ScopeSet) Contains(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// SubsetOf reports whether every scope in s is present in other.
func (s ScopeSet) SubsetOf(other ScopeSet) bool {
	for sc := range s {
		if !other.Contains(sc) {
			return false
		}
	}
	return true
}

// Union returns a new set holding the scopes of both sets.
func (s ScopeSet) Union(other ScopeSet) ScopeSet {
	u := make(ScopeSet, len(s)+len(other))
	for sc := range s {
		u[sc] = struct{}{}
	}
	for sc := range other {
		u[sc] = struct{}{}
	}
	return u
}

// String returns the scopes sorted and space-joined, the wire form used
// in the client-credentials exchange.
func (s ScopeSet) String() string {
	names := make([]string, 0, len(s))
	for sc := range s {
		names = append(names, string(sc))
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// expirySkew is subtracted from a token's expiry when judging validity
// so a token is refreshed slightly before the server would reject it.
const expirySkew = 10 * time.Second

// Token is an issued bearer token. Tokens are never mutated in place;
// a refresh replaces the cached token wholesale.
type Token struct {
	AccessToken string
	TokenType   string
	Scopes      ScopeSet
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Valid reports whether the token can authorize a request needing the
// given scopes at time now. A nil token is never valid.
func (t *Token) Valid(now time.Time, required ScopeSet) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if !now.Before(t.ExpiresAt.Add(-expirySkew)) {
		return false
	}
	return required.SubsetOf(t.Scopes)
}

// tokenCache holds the process-local current token. It is read-mostly
// and written only by the owning TokenSource during a refresh; the
// token is replaced as a whole so readers never observe partial fields.
type tokenCache struct {
	mu  sync.RWMutex
	tok *Token
}

func (c *tokenCache) get() *Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tok
}

func (c *tokenCache) set(tok *Token) {
	c.mu.Lock()
	c.tok = tok
	c.mu.Unlock()
}
