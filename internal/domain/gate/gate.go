// Package gate holds the pure eligibility predicates for competitions
// and nominations. No mutation, no IO; violations surface to callers as
// not-eligible errors, never as silent no-ops.
package gate

import (
	"time"

	"github.com/palitra-app/palitra/internal/domain/entity"
)

// AcceptsSubmissions reports whether the nomination currently takes new
// artworks: the competition must be active with its accepting window
// open, and the nomination must be active and belong to it.
func AcceptsSubmissions(c *entity.Competition, n *entity.Nomination, now time.Time) bool {
	if c == nil || n == nil {
		return false
	}
	if c.Status != entity.CompetitionActive {
		return false
	}
	if !now.Before(c.EndOfAccepting) {
		return false
	}
	if n.Status != entity.NominationActive {
		return false
	}
	return n.CompetitionID == c.ID
}

// AcceptsRatings reports whether the judging window is still open.
func AcceptsRatings(c *entity.Competition, now time.Time) bool {
	if c == nil {
		return false
	}
	return now.Before(c.SummingUp)
}
