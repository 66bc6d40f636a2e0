package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/internal/domain/entity"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeUserRepo struct {
	users map[string]*entity.User // by id
	seq   int

	emailErr error // forced failure for GetByEmail
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) add(u *entity.User) *entity.User {
	f.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.seq)
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	f.add(u)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByVerificationToken(_ context.Context, token string) (*entity.User, error) {
	for _, u := range f.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, token string) (*entity.User, error) {
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) SetVerificationToken(_ context.Context, userID, token string, issuedAt time.Time, status entity.UserStatus) error {
	u, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.VerificationToken = token
	u.VerificationIssuedAt = &issuedAt
	u.Status = status
	return nil
}

func (f *fakeUserRepo) ConsumeVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	u, err := f.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	u.Status = entity.StatusActive
	u.VerificationToken = ""
	u.VerificationIssuedAt = nil
	return u, nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, userID, token string, issuedAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.ResetToken = token
	u.ResetIssuedAt = &issuedAt
	return nil
}

func (f *fakeUserRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*entity.User, error) {
	u, err := f.GetByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}
	u.Password = passwordHash
	u.ResetToken = ""
	u.ResetIssuedAt = nil
	return u, nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, userID string, status entity.UserStatus) error {
	u, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	u.Status = status
	return nil
}

type fakeCompetitionRepo struct {
	comps map[string]*entity.Competition
	seq   int
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{comps: map[string]*entity.Competition{}}
}

func (f *fakeCompetitionRepo) Create(_ context.Context, c *entity.Competition) error {
	f.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("comp-%d", f.seq)
	}
	f.comps[c.ID] = c
	return nil
}

func (f *fakeCompetitionRepo) GetByID(_ context.Context, id string) (*entity.Competition, error) {
	if c, ok := f.comps[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeCompetitionRepo) List(_ context.Context) ([]entity.Competition, error) {
	out := []entity.Competition{}
	for _, c := range f.comps {
		out = append(out, *c)
	}
	return out, nil
}

type fakeNominationRepo struct {
	noms map[string]*entity.Nomination
	seq  int
}

func newFakeNominationRepo() *fakeNominationRepo {
	return &fakeNominationRepo{noms: map[string]*entity.Nomination{}}
}

func (f *fakeNominationRepo) Create(_ context.Context, n *entity.Nomination) error {
	f.seq++
	if n.ID == "" {
		n.ID = fmt.Sprintf("nom-%d", f.seq)
	}
	f.noms[n.ID] = n
	return nil
}

func (f *fakeNominationRepo) GetByID(_ context.Context, id string) (*entity.Nomination, error) {
	if n, ok := f.noms[id]; ok {
		return n, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeNominationRepo) ListActiveByCompetition(_ context.Context, competitionID string) ([]entity.Nomination, error) {
	out := []entity.Nomination{}
	for _, n := range f.noms {
		if n.CompetitionID == competitionID && n.Status == entity.NominationActive {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNominationRepo) CloseWithWinner(_ context.Context, nominationID, artworkID string) error {
	n, ok := f.noms[nominationID]
	if !ok {
		return repo.ErrNotFound
	}
	n.Status = entity.NominationClosed
	n.WinnerArtworkID = artworkID
	return nil
}

type fakeArtworkRepo struct {
	arts map[string]*entity.Artwork
	seq  int
}

func newFakeArtworkRepo() *fakeArtworkRepo {
	return &fakeArtworkRepo{arts: map[string]*entity.Artwork{}}
}

func (f *fakeArtworkRepo) add(a *entity.Artwork) *entity.Artwork {
	f.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("art-%d", f.seq)
	}
	f.arts[a.ID] = a
	return a
}

func (f *fakeArtworkRepo) CreateCapped(ctx context.Context, a *entity.Artwork, maxPerNomination int) error {
	n, _ := f.CountByUserAndNomination(ctx, a.UserID, a.NominationID)
	if n >= maxPerNomination {
		return repo.ErrLimitExceeded
	}
	f.add(a)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (f *fakeArtworkRepo) CountByUserAndNomination(_ context.Context, userID, nominationID string) (int, error) {
	n := 0
	for _, a := range f.arts {
		if a.UserID == userID && a.NominationID == nominationID {
			n++
		}
	}
	return n, nil
}

func (f *fakeArtworkRepo) GetByID(_ context.Context, id string) (*entity.Artwork, error) {
	if a, ok := f.arts[id]; ok {
		return a, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeArtworkRepo) ListByNomination(_ context.Context, nominationID string) ([]entity.Artwork, error) {
	out := []entity.Artwork{}
	for _, a := range f.arts {
		if a.NominationID == nominationID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeArtworkRepo) ListByUser(_ context.Context, userID string) ([]entity.Artwork, error) {
	out := []entity.Artwork{}
	for _, a := range f.arts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeArtworkRepo) ListByStatus(_ context.Context, status entity.ArtworkStatus) ([]entity.Artwork, error) {
	out := []entity.Artwork{}
	for _, a := range f.arts {
		if a.Status == status {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeArtworkRepo) UpdateStatus(_ context.Context, artworkID string, status entity.ArtworkStatus) error {
	a, ok := f.arts[artworkID]
	if !ok {
		return repo.ErrNotFound
	}
	a.Status = status
	return nil
}

type fakeRatingRepo struct {
	scores map[string]int // "artwork|juror" -> score
	arts   *fakeArtworkRepo
}

func newFakeRatingRepo(arts *fakeArtworkRepo) *fakeRatingRepo {
	return &fakeRatingRepo{scores: map[string]int{}, arts: arts}
}

func ratingKey(artworkID, jurorID string) string { return artworkID + "|" + jurorID }

func (f *fakeRatingRepo) Upsert(_ context.Context, r *entity.Rating) (bool, error) {
	k := ratingKey(r.ArtworkID, r.JurorID)
	_, existed := f.scores[k]
	f.scores[k] = r.Score
	return !existed, nil
}

func (f *fakeRatingRepo) SummaryByArtwork(_ context.Context, artworkID string) (*entity.RatingSummary, error) {
	sum, n := 0, 0
	for k, s := range f.scores {
		if strings.HasPrefix(k, artworkID+"|") {
			sum += s
			n++
		}
	}
	out := &entity.RatingSummary{ArtworkID: artworkID, Count: n}
	if n > 0 {
		out.Average = float64(sum) / float64(n)
	}
	return out, nil
}

func (f *fakeRatingRepo) BestByNomination(ctx context.Context, nominationID string) (*entity.RatingSummary, error) {
	var best *entity.RatingSummary
	for _, a := range f.arts.arts {
		if a.NominationID != nominationID {
			continue
		}
		s, _ := f.SummaryByArtwork(ctx, a.ID)
		if s.Count == 0 {
			continue
		}
		if best == nil || s.Average > best.Average {
			best = s
		}
	}
	if best == nil {
		return nil, repo.ErrNotFound
	}
	return best, nil
}

type fakeSessionRevoker struct {
	destroyed []string
}

func (f *fakeSessionRevoker) Destroy(_ context.Context, userID string) {
	f.destroyed = append(f.destroyed, userID)
}

type fakeStorage struct {
	puts   map[string]string // key -> content type
	putErr error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{puts: map[string]string{}} }

func (f *fakeStorage) Put(_ context.Context, key, contentType string, _ io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts[key] = contentType
	return "gs://test/" + key, nil
}

func (f *fakeStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

type fakeNotifier struct {
	published []any
	err       error
}

func (f *fakeNotifier) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

type fakeIndexer struct {
	docs    []ArtworkDoc
	results []ArtworkDoc
}

func (f *fakeIndexer) Index(_ context.Context, doc ArtworkDoc) error {
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _ int) ([]ArtworkDoc, error) {
	return f.results, nil
}
