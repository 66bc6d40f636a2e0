package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/gate"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
)

// RatingService records juror scores, one per (juror, artwork) pair.
type RatingService struct {
	Artworks     repo.ArtworkRepository
	Nominations  repo.NominationRepository
	Competitions repo.CompetitionRepository
	Ratings      repo.RatingRepository
	Logger       *logrus.Logger
}

func NewRatingService(artworks repo.ArtworkRepository, nominations repo.NominationRepository, competitions repo.CompetitionRepository, ratings repo.RatingRepository, logger *logrus.Logger) *RatingService {
	return &RatingService{
		Artworks:     artworks,
		Nominations:  nominations,
		Competitions: competitions,
		Ratings:      ratings,
		Logger:       logger,
	}
}

// Rate upserts the juror's score for an artwork. The returned flag says
// whether the rating was newly created (first vote) or overwritten.
func (s *RatingService) Rate(ctx context.Context, jurorID, artworkID string, score int) (created bool, err error) {
	if score < 1 || score > 10 {
		return false, ErrInvalidScore
	}
	a, err := s.Artworks.GetByID(ctx, artworkID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrArtworkNotFound
		}
		return false, err
	}
	comp, err := s.competitionOf(ctx, a)
	if err != nil {
		return false, err
	}
	if !gate.AcceptsRatings(comp, time.Now().UTC()) {
		return false, ErrRatingWindowClosed
	}
	return s.Ratings.Upsert(ctx, &entity.Rating{ArtworkID: artworkID, JurorID: jurorID, Score: score})
}

// Summary returns the aggregate score for an artwork.
func (s *RatingService) Summary(ctx context.Context, artworkID string) (*entity.RatingSummary, error) {
	if _, err := s.Artworks.GetByID(ctx, artworkID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrArtworkNotFound
		}
		return nil, err
	}
	return s.Ratings.SummaryByArtwork(ctx, artworkID)
}

func (s *RatingService) competitionOf(ctx context.Context, a *entity.Artwork) (*entity.Competition, error) {
	nom, err := s.Nominations.GetByID(ctx, a.NominationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNominationUnavailable
		}
		return nil, err
	}
	comp, err := s.Competitions.GetByID(ctx, nom.CompetitionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return comp, nil
}
