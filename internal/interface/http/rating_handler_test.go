package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/internal/domain/entity"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
)

const testArtworkID = "4d1c2f0a-5b7e-4f7c-9a2d-8e3f1b6c0d91"

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubCompetitionRepo struct{ comps map[string]*entity.Competition }

func (s *stubCompetitionRepo) Create(_ context.Context, _ *entity.Competition) error { return nil }
func (s *stubCompetitionRepo) GetByID(_ context.Context, id string) (*entity.Competition, error) {
	if c, ok := s.comps[id]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}
func (s *stubCompetitionRepo) List(_ context.Context) ([]entity.Competition, error) {
	return nil, nil
}

type stubNominationRepo struct{ noms map[string]*entity.Nomination }

func (s *stubNominationRepo) Create(_ context.Context, _ *entity.Nomination) error { return nil }
func (s *stubNominationRepo) GetByID(_ context.Context, id string) (*entity.Nomination, error) {
	if n, ok := s.noms[id]; ok {
		return n, nil
	}
	return nil, repo.ErrNotFound
}
func (s *stubNominationRepo) ListActiveByCompetition(_ context.Context, _ string) ([]entity.Nomination, error) {
	return nil, nil
}
func (s *stubNominationRepo) CloseWithWinner(_ context.Context, _, _ string) error { return nil }

type stubArtworkRepo struct{ arts map[string]*entity.Artwork }

func (s *stubArtworkRepo) CreateCapped(_ context.Context, _ *entity.Artwork, _ int) error {
	return nil
}
func (s *stubArtworkRepo) CountByUserAndNomination(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}
func (s *stubArtworkRepo) GetByID(_ context.Context, id string) (*entity.Artwork, error) {
	if a, ok := s.arts[id]; ok {
		return a, nil
	}
	return nil, repo.ErrNotFound
}
func (s *stubArtworkRepo) ListByNomination(_ context.Context, _ string) ([]entity.Artwork, error) {
	return nil, nil
}
func (s *stubArtworkRepo) ListByUser(_ context.Context, _ string) ([]entity.Artwork, error) {
	return nil, nil
}
func (s *stubArtworkRepo) ListByStatus(_ context.Context, _ entity.ArtworkStatus) ([]entity.Artwork, error) {
	return nil, nil
}
func (s *stubArtworkRepo) UpdateStatus(_ context.Context, _ string, _ entity.ArtworkStatus) error {
	return nil
}

type stubRatingRepo struct{ scores map[string]int } // "artwork|juror" -> score

func (s *stubRatingRepo) Upsert(_ context.Context, r *entity.Rating) (bool, error) {
	k := r.ArtworkID + "|" + r.JurorID
	_, existed := s.scores[k]
	s.scores[k] = r.Score
	return !existed, nil
}
func (s *stubRatingRepo) SummaryByArtwork(_ context.Context, artworkID string) (*entity.RatingSummary, error) {
	sum, n := 0, 0
	for k, v := range s.scores {
		if strings.HasPrefix(k, artworkID+"|") {
			sum += v
			n++
		}
	}
	out := &entity.RatingSummary{ArtworkID: artworkID, Count: n}
	if n > 0 {
		out.Average = float64(sum) / float64(n)
	}
	return out, nil
}
func (s *stubRatingRepo) BestByNomination(_ context.Context, _ string) (*entity.RatingSummary, error) {
	return nil, repo.ErrNotFound
}

// newRatingRouter wires the jury routes against stub storage, with the
// auth middleware replaced by a stub that injects the juror id.
func newRatingRouter(t *testing.T, summingUp time.Time) (*gin.Engine, *stubRatingRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	comp := &entity.Competition{ID: "comp-1", Status: entity.CompetitionActive, SummingUp: summingUp}
	nom := &entity.Nomination{ID: "nom-1", CompetitionID: "comp-1", Status: entity.NominationActive}
	art := &entity.Artwork{ID: testArtworkID, NominationID: "nom-1", Status: entity.ArtworkApproved}

	ratings := &stubRatingRepo{scores: map[string]int{}}
	svc := app.NewRatingService(
		&stubArtworkRepo{arts: map[string]*entity.Artwork{art.ID: art}},
		&stubNominationRepo{noms: map[string]*entity.Nomination{nom.ID: nom}},
		&stubCompetitionRepo{comps: map[string]*entity.Competition{comp.ID: comp}},
		ratings,
		testLogger(),
	)
	h := NewRatingHandler(svc, testLogger())

	r := gin.New()
	asJuror := func(c *gin.Context) { c.Set("userID", "juror-1") }
	r.POST("/api/ratings", asJuror, h.Rate)
	r.GET("/api/artworks/:id/rating", asJuror, h.Summary)
	return r, ratings
}

func postRating(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ratings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateEndpointStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"first vote", `{"artwork_id":"` + testArtworkID + `","rating":7}`, http.StatusCreated},
		{"unknown artwork", `{"artwork_id":"9d1c2f0a-5b7e-4f7c-9a2d-8e3f1b6c0d00","rating":7}`, http.StatusNotFound},
		{"score too high", `{"artwork_id":"` + testArtworkID + `","rating":11}`, http.StatusBadRequest},
		{"score missing", `{"artwork_id":"` + testArtworkID + `"}`, http.StatusBadRequest},
		{"malformed id", `{"artwork_id":"not-a-uuid","rating":7}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRatingRouter(t, time.Now().Add(time.Hour))
			w := postRating(r, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRateEndpointRepeatVote(t *testing.T) {
	r, ratings := newRatingRouter(t, time.Now().Add(time.Hour))

	if w := postRating(r, `{"artwork_id":"`+testArtworkID+`","rating":7}`); w.Code != http.StatusCreated {
		t.Fatalf("first vote status = %d, want 201", w.Code)
	}
	if w := postRating(r, `{"artwork_id":"`+testArtworkID+`","rating":9}`); w.Code != http.StatusOK {
		t.Fatalf("second vote status = %d, want 200", w.Code)
	}
	if got := ratings.scores[testArtworkID+"|juror-1"]; got != 9 {
		t.Errorf("stored score = %d, want the overwrite to win", got)
	}
}

func TestRateEndpointClosedWindow(t *testing.T) {
	r, _ := newRatingRouter(t, time.Now().Add(-time.Hour))

	w := postRating(r, `{"artwork_id":"`+testArtworkID+`","rating":7}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 after summing up", w.Code)
	}
	var body struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Success {
		t.Error("success = true on a rejected rating")
	}
}

func TestRatingSummaryEndpoint(t *testing.T) {
	r, ratings := newRatingRouter(t, time.Now().Add(time.Hour))
	ratings.scores[testArtworkID+"|j1"] = 6
	ratings.scores[testArtworkID+"|j2"] = 10

	req := httptest.NewRequest(http.MethodGet, "/api/artworks/"+testArtworkID+"/rating", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Data struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Data.Count != 2 || body.Data.Average != 8 {
		t.Errorf("summary = %+v, want average 8 over 2 votes", body.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/artworks/9d1c2f0a-5b7e-4f7c-9a2d-8e3f1b6c0d00/rating", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown artwork status = %d, want 404", w.Code)
	}
}
