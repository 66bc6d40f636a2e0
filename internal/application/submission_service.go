package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/gate"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
)

// allowedImageTypes maps accepted file extensions to the content type
// stored alongside the object.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// SubmissionService validates and records artwork submissions.
type SubmissionService struct {
	Competitions repo.CompetitionRepository
	Nominations  repo.NominationRepository
	Artworks     repo.ArtworkRepository
	Storage      ObjectStorage
	Indexer      ArtworkIndexer
	Logger       *logrus.Logger

	// MaxPerNomination caps submissions per user per nomination.
	MaxPerNomination int
}

func NewSubmissionService(competitions repo.CompetitionRepository, nominations repo.NominationRepository, artworks repo.ArtworkRepository, storage ObjectStorage, indexer ArtworkIndexer, logger *logrus.Logger, maxPerNomination int) *SubmissionService {
	if maxPerNomination <= 0 {
		maxPerNomination = 3
	}
	return &SubmissionService{
		Competitions:     competitions,
		Nominations:      nominations,
		Artworks:         artworks,
		Storage:          storage,
		Indexer:          indexer,
		Logger:           logger,
		MaxPerNomination: maxPerNomination,
	}
}

type SubmitInput struct {
	UserID        string
	AuthorName    string
	CompetitionID string
	NominationID  string
	Filename      string
	DisplayName   string
	File          io.Reader
}

// Submit runs the intake preconditions in order, writes the binary to
// object storage first and commits the artwork row second, so a storage
// failure never leaves metadata pointing at a missing object.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (*entity.Artwork, error) {
	comp, err := s.Competitions.GetByID(ctx, in.CompetitionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCompetitionClosed
		}
		return nil, err
	}
	nom, err := s.Nominations.GetByID(ctx, in.NominationID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNominationUnavailable
		}
		return nil, err
	}

	now := time.Now().UTC()
	if !gate.AcceptsSubmissions(comp, nom, now) {
		if nom.Status != entity.NominationActive || nom.CompetitionID != comp.ID {
			return nil, ErrNominationUnavailable
		}
		return nil, ErrCompetitionClosed
	}

	// Cheap pre-check so the common over-limit case skips the storage
	// write; the capped insert below is the authoritative one.
	if n, err := s.Artworks.CountByUserAndNomination(ctx, in.UserID, in.NominationID); err == nil && n >= s.MaxPerNomination {
		return nil, ErrSubmissionLimit
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return nil, ErrUnsupportedFileType
	}

	key := ObjectKey(in.CompetitionID, in.NominationID, in.UserID, ext, now)
	if _, err := s.Storage.Put(ctx, key, contentType, in.File); err != nil {
		return nil, fmt.Errorf("store artwork: %w", err)
	}

	a := &entity.Artwork{
		UserID:       in.UserID,
		NominationID: in.NominationID,
		ObjectKey:    key,
		DisplayName:  in.DisplayName,
		Status:       entity.ArtworkForModeration,
	}
	if err := s.Artworks.CreateCapped(ctx, a, s.MaxPerNomination); err != nil {
		if errors.Is(err, repo.ErrLimitExceeded) {
			return nil, ErrSubmissionLimit
		}
		return nil, err
	}

	s.index(ctx, a, in.AuthorName)
	return a, nil
}

// ArtworkURL returns a short-lived signed URL for viewing an artwork.
func (s *SubmissionService) ArtworkURL(ctx context.Context, artworkID string) (string, error) {
	a, err := s.Artworks.GetByID(ctx, artworkID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrArtworkNotFound
		}
		return "", err
	}
	return s.Storage.SignedURL(ctx, a.ObjectKey, 15*time.Minute)
}

// ListOwn returns the caller's submissions.
func (s *SubmissionService) ListOwn(ctx context.Context, userID string) ([]entity.Artwork, error) {
	return s.Artworks.ListByUser(ctx, userID)
}

// Search queries the artwork search index.
func (s *SubmissionService) Search(ctx context.Context, query string, size int) ([]ArtworkDoc, error) {
	if s.Indexer == nil {
		return []ArtworkDoc{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Indexer.Search(ctx, query, size)
}

func (s *SubmissionService) index(ctx context.Context, a *entity.Artwork, authorName string) {
	if s.Indexer == nil {
		return
	}
	doc := ArtworkDoc{
		ID:           a.ID,
		DisplayName:  a.DisplayName,
		AuthorName:   authorName,
		NominationID: a.NominationID,
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := s.Indexer.Index(ctx, doc); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("artwork_id", a.ID).Warn("artwork index failed")
	}
}

// ObjectKey derives the collision-resistant, human-browsable storage
// key: competitions/<cid>/nominations/<nid>/users/<uid>/<yyyy>/<mm>/<uuid><ext>.
func ObjectKey(competitionID, nominationID, userID, ext string, now time.Time) string {
	return fmt.Sprintf("competitions/%s/nominations/%s/users/%s/%s/%s%s",
		competitionID, nominationID, userID, now.UTC().Format("2006/01"), uuid.NewString(), ext)
}
