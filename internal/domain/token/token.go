// Package token generates and checks the expiring single-use tokens
// used for email verification and password reset.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// DefaultTTL matches the "link valid for 60 minutes" wording in the
// verification email.
const DefaultTTL = time.Hour

// New returns a cryptographically random URL-safe token.
func New() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Expired reports whether a token issued at issuedAt is past its ttl at
// now. A missing issuance stamp counts as expired; the comparison is
// always done in UTC.
func Expired(issuedAt *time.Time, ttl time.Duration, now time.Time) bool {
	if issuedAt == nil || issuedAt.IsZero() {
		return true
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	iss := issuedAt.UTC()
	return now.UTC().After(iss.Add(ttl))
}
