package entity

import "time"

// CompetitionStatus and NominationStatus are stored as plain strings in
// the DB; only "active" opens a window, everything else is closed.
type CompetitionStatus string

const (
	CompetitionActive   CompetitionStatus = "active"
	CompetitionDraft    CompetitionStatus = "draft"
	CompetitionArchived CompetitionStatus = "archived"
)

type NominationStatus string

const (
	NominationActive NominationStatus = "active"
	NominationClosed NominationStatus = "closed"
)

// ArtworkStatus transitions: for moderation -> approved/rejected by an
// administrator. Submissions always start in moderation.
type ArtworkStatus string

const (
	ArtworkForModeration ArtworkStatus = "for moderation"
	ArtworkApproved      ArtworkStatus = "approved"
	ArtworkRejected      ArtworkStatus = "rejected"
)

// Competition is a time-boxed contest. Invariant, enforced on create
// and update: StartOfAccepting <= EndOfAccepting <= SummingUp.
type Competition struct {
	ID               string
	Title            string
	Status           CompetitionStatus
	StartOfAccepting time.Time
	EndOfAccepting   time.Time
	SummingUp        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Nomination belongs to exactly one competition. WinnerArtworkID is set
// only once judging closed.
type Nomination struct {
	ID              string
	CompetitionID   string
	Title           string
	Status          NominationStatus
	WinnerArtworkID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Artwork is immutable after intake except for the status transitions
// performed by moderation.
type Artwork struct {
	ID           string
	UserID       string
	NominationID string
	ObjectKey    string
	DisplayName  string
	Status       ArtworkStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rating is unique per (ArtworkID, JurorID); re-rating overwrites Score
// in place.
type Rating struct {
	ID        string
	ArtworkID string
	JurorID   string
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingSummary is the aggregate a jury sees per artwork.
type RatingSummary struct {
	ArtworkID string
	Average   float64
	Count     int
}
