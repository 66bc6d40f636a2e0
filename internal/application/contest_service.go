package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/internal/domain/entity"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
)

// ContestService covers the administrator side of the workflow:
// competitions, nominations, moderation and winner selection.
type ContestService struct {
	Competitions repo.CompetitionRepository
	Nominations  repo.NominationRepository
	Artworks     repo.ArtworkRepository
	Ratings      repo.RatingRepository
	Users        repo.UserRepository
	Sessions     SessionRevoker
	Logger       *logrus.Logger
}

func NewContestService(competitions repo.CompetitionRepository, nominations repo.NominationRepository, artworks repo.ArtworkRepository, ratings repo.RatingRepository, users repo.UserRepository, sessions SessionRevoker, logger *logrus.Logger) *ContestService {
	return &ContestService{
		Competitions: competitions,
		Nominations:  nominations,
		Artworks:     artworks,
		Ratings:      ratings,
		Users:        users,
		Sessions:     sessions,
		Logger:       logger,
	}
}

type CreateCompetitionInput struct {
	Title            string
	Status           entity.CompetitionStatus
	StartOfAccepting time.Time
	EndOfAccepting   time.Time
	SummingUp        time.Time
}

// CreateCompetition enforces start <= end <= summing-up on the window.
func (s *ContestService) CreateCompetition(ctx context.Context, in CreateCompetitionInput) (*entity.Competition, error) {
	if in.StartOfAccepting.After(in.EndOfAccepting) || in.EndOfAccepting.After(in.SummingUp) {
		return nil, ErrInvalidTimeWindow
	}
	status := in.Status
	if status == "" {
		status = entity.CompetitionDraft
	}
	c := &entity.Competition{
		Title:            in.Title,
		Status:           status,
		StartOfAccepting: in.StartOfAccepting,
		EndOfAccepting:   in.EndOfAccepting,
		SummingUp:        in.SummingUp,
	}
	if err := s.Competitions.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContestService) ListCompetitions(ctx context.Context) ([]entity.Competition, error) {
	return s.Competitions.List(ctx)
}

func (s *ContestService) CreateNomination(ctx context.Context, competitionID, title string) (*entity.Nomination, error) {
	if _, err := s.Competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	n := &entity.Nomination{
		CompetitionID: competitionID,
		Title:         title,
		Status:        entity.NominationActive,
	}
	if err := s.Nominations.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// OpenNominations lists the active nominations of a competition.
func (s *ContestService) OpenNominations(ctx context.Context, competitionID string) ([]entity.Nomination, error) {
	if _, err := s.Competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return s.Nominations.ListActiveByCompetition(ctx, competitionID)
}

func (s *ContestService) NominationArtworks(ctx context.Context, nominationID string) ([]entity.Artwork, error) {
	if _, err := s.Nominations.GetByID(ctx, nominationID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNominationNotFound
		}
		return nil, err
	}
	return s.Artworks.ListByNomination(ctx, nominationID)
}

func (s *ContestService) ListArtworksByStatus(ctx context.Context, status entity.ArtworkStatus) ([]entity.Artwork, error) {
	return s.Artworks.ListByStatus(ctx, status)
}

// ModerateArtwork approves or rejects a submitted artwork.
func (s *ContestService) ModerateArtwork(ctx context.Context, artworkID string, approve bool) error {
	status := entity.ArtworkRejected
	if approve {
		status = entity.ArtworkApproved
	}
	if err := s.Artworks.UpdateStatus(ctx, artworkID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrArtworkNotFound
		}
		return err
	}
	return nil
}

// SetUserStatus is the administrator ban/restore switch. Taking an
// account out of the active state also kills its session, so tokens
// the user still holds stop working immediately.
func (s *ContestService) SetUserStatus(ctx context.Context, userID string, status entity.UserStatus) error {
	switch status {
	case entity.StatusActive, entity.StatusBanned, entity.StatusInactive:
	default:
		return ErrInvalidStatus
	}
	if err := s.Users.UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if status != entity.StatusActive && s.Sessions != nil {
		s.Sessions.Destroy(ctx, userID)
	}
	return nil
}

// PickWinner closes a nomination with its highest-rated artwork. Only
// allowed once the judging window of the owning competition has passed.
func (s *ContestService) PickWinner(ctx context.Context, nominationID string) (*entity.RatingSummary, error) {
	nom, err := s.Nominations.GetByID(ctx, nominationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNominationNotFound
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
	if time.Now().UTC().Before(comp.SummingUp) {
		return nil, ErrJudgingStillOpen
	}
	best, err := s.Ratings.BestByNomination(ctx, nominationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNothingRated
		}
		return nil, err
	}
	if err := s.Nominations.CloseWithWinner(ctx, nominationID, best.ArtworkID); err != nil {
		return nil, err
	}
	return best, nil
}
