package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palitra-app/palitra/internal/domain/entity"
)

type ratingFixture struct {
	svc     *RatingService
	comps   *fakeCompetitionRepo
	ratings *fakeRatingRepo
	comp    *entity.Competition
	art     *entity.Artwork
}

func newRatingFixture(t *testing.T) *ratingFixture {
	t.Helper()
	comps := newFakeCompetitionRepo()
	noms := newFakeNominationRepo()
	arts := newFakeArtworkRepo()
	ratings := newFakeRatingRepo(arts)

	now := time.Now().UTC()
	comp := &entity.Competition{
		Title:            "Autumn Salon",
		Status:           entity.CompetitionActive,
		StartOfAccepting: now.Add(-2 * time.Hour),
		EndOfAccepting:   now.Add(-time.Hour),
		SummingUp:        now.Add(time.Hour),
	}
	_ = comps.Create(context.Background(), comp)
	nom := &entity.Nomination{CompetitionID: comp.ID, Title: "Oil painting", Status: entity.NominationActive}
	_ = noms.Create(context.Background(), nom)
	art := arts.add(&entity.Artwork{UserID: "user-1", NominationID: nom.ID, Status: entity.ArtworkApproved})

	return &ratingFixture{
		svc:     NewRatingService(arts, noms, comps, ratings, testLogger()),
		comps:   comps,
		ratings: ratings,
		comp:    comp,
		art:     art,
	}
}

func TestRateCreatesThenOverwrites(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	created, err := f.svc.Rate(ctx, "juror-1", f.art.ID, 7)
	if err != nil || !created {
		t.Fatalf("first Rate = (created=%v, err=%v), want new rating", created, err)
	}

	created, err = f.svc.Rate(ctx, "juror-1", f.art.ID, 9)
	if err != nil {
		t.Fatalf("second Rate: %v", err)
	}
	if created {
		t.Error("re-rating reported as created, want overwrite")
	}

	sum, err := f.svc.Summary(ctx, f.art.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 1 || sum.Average != 9 {
		t.Errorf("summary = %+v, want single score of 9", sum)
	}
}

func TestRateScoreBounds(t *testing.T) {
	f := newRatingFixture(t)
	for _, score := range []int{0, -1, 11, 100} {
		if _, err := f.svc.Rate(context.Background(), "juror-1", f.art.ID, score); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("score %d err = %v, want ErrInvalidScore", score, err)
		}
	}
}

func TestRateUnknownArtwork(t *testing.T) {
	f := newRatingFixture(t)
	if _, err := f.svc.Rate(context.Background(), "juror-1", "ghost", 5); !errors.Is(err, ErrArtworkNotFound) {
		t.Errorf("err = %v, want ErrArtworkNotFound", err)
	}
}

func TestRateAfterSummingUp(t *testing.T) {
	f := newRatingFixture(t)
	f.comp.SummingUp = time.Now().UTC().Add(-time.Minute)

	if _, err := f.svc.Rate(context.Background(), "juror-1", f.art.ID, 5); !errors.Is(err, ErrRatingWindowClosed) {
		t.Errorf("err = %v, want ErrRatingWindowClosed", err)
	}
}

func TestSummaryAveragesAcrossJurors(t *testing.T) {
	f := newRatingFixture(t)
	ctx := context.Background()

	for juror, score := range map[string]int{"juror-1": 6, "juror-2": 8, "juror-3": 10} {
		if _, err := f.svc.Rate(ctx, juror, f.art.ID, score); err != nil {
			t.Fatalf("Rate(%s): %v", juror, err)
		}
	}
	sum, err := f.svc.Summary(ctx, f.art.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 3 || sum.Average != 8 {
		t.Errorf("summary = %+v, want count 3 average 8", sum)
	}
}

func TestSummaryUnknownArtwork(t *testing.T) {
	f := newRatingFixture(t)
	if _, err := f.svc.Summary(context.Background(), "ghost"); !errors.Is(err, ErrArtworkNotFound) {
		t.Errorf("err = %v, want ErrArtworkNotFound", err)
	}
}
