package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is used when the service is not configured with one.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims are the access-token claims issued to members and applicants.
// The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	// MemberID is the membership record of the subject, empty if none.
	MemberID string `json:"mid,omitempty"`

	// CommunityID the membership belongs to.
	CommunityID string `json:"cid,omitempty"`

	// Role is the membership role: admin, member or guest.
	Role string `json:"role,omitempty"`

	// Scopes granted to the bearer, e.g. "admin:write".
	Scopes []string `json:"scopes,omitempty"`

	// Name is the display name of the member.
	Name string `json:"name,omitempty"`
}

// AccessParams groups what NewAccessClaims needs.
type AccessParams struct {
	Subject     string
	MemberID    string
	CommunityID string
	Role        string
	Name        string
	Scopes      []string
	Issuer      string
	Audience    []string
	TTL         time.Duration
}

// NewAccessClaims builds claims valid from now for p.TTL.
func NewAccessClaims(p AccessParams, now time.Time) Claims {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(p.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		MemberID:    p.MemberID,
		CommunityID: p.CommunityID,
		Role:        p.Role,
		Scopes:      p.Scopes,
		Name:        p.Name,
	}
}

func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateIssuer checks iss when expected is set.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience requires one of expected in aud when expected is set.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf against the current time.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
