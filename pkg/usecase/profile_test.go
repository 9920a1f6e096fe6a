package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/repository/memory"
	"github.com/secmon-lab/coffeechat/pkg/service/profile"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

func testProfiles() []*model.Profile {
	return []*model.Profile{
		{
			Name:       "Ada Lovelace",
			Title:      "Engineer",
			Email:      "ada@example.com",
			ProfileURL: "https://linkedin.com/in/ada",
			Experience: []model.Experience{{Title: "Engineer", Company: "Babbage"}},
			Source:     types.ProviderLinkd,
		},
		{
			Name:       "Grace Hopper",
			Title:      "Admiral",
			Email:      "grace@example.com",
			ProfileURL: "https://linkedin.com/in/grace",
			Source:     types.ProviderLinkd,
		},
		{
			Name:       "Alan Turing",
			Title:      "Mathematician",
			Email:      "alan@example.com",
			ProfileURL: "https://linkedin.com/in/alan",
			Source:     types.ProviderLinkd,
		},
	}
}

func detailFor(url string) (*model.DetailedProfile, error) {
	return &model.DetailedProfile{
		ProfileURL: url,
		Industry:   "Computing",
		Company:    "Analytical Engines",
		Skills:     []string{"Go", "Math", "Poetry", "Looms"},
		Source:     types.ProviderRapidAPI,
	}, nil
}

func TestProfileUseCase_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests results without interaction", func(t *testing.T) {
		searcher := &mockSearcher{profiles: testProfiles()}
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(searcher))
		onboard(t, uc, "agent-1")

		res, err := uc.Profile.Search(ctx, "agent-1", "  engineers  ", 0, "")
		gt.NoError(t, err).Required()

		gt.Array(t, res.Profiles).Length(3)
		gt.Value(t, searcher.queries[0]).Equal("engineers")
		gt.Value(t, searcher.limits[0]).Equal(usecase.DefaultSearchLimit)
		gt.String(t, res.Message).Contains("Found 3 LinkedIn profiles")

		contacts, err := uc.Contact.List(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(3)
		for _, c := range contacts {
			gt.Array(t, c.History).Length(0)
			gt.Value(t, c.LastContact).Nil()
		}
		gt.Value(t, contacts[0].AdditionalData["company"]).Equal("Babbage")
	})

	t.Run("repeated search does not duplicate contacts", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{profiles: testProfiles()}))
		onboard(t, uc, "agent-1")

		for range 2 {
			_, err := uc.Profile.Search(ctx, "agent-1", "engineers", 5, types.SearchPurposeResearch)
			gt.NoError(t, err).Required()
		}

		contacts, err := uc.Contact.List(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(3)
	})

	t.Run("zero results is not an error", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{}))
		onboard(t, uc, "agent-1")

		res, err := uc.Profile.Search(ctx, "agent-1", "nobody", 5, "")
		gt.NoError(t, err).Required()
		gt.Value(t, res.Message).Equal(usecase.MsgNoProfiles)
		gt.Array(t, res.Profiles).Length(0)
	})

	t.Run("empty query", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{}))
		_, err := uc.Profile.Search(ctx, "agent-1", "  ", 5, "")
		gt.Bool(t, errors.Is(err, usecase.ErrEmptyQuery)).True()
	})

	t.Run("provider failure propagates", func(t *testing.T) {
		upstream := goerr.New("upstream down")
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{err: upstream}))
		onboard(t, uc, "agent-1")

		_, err := uc.Profile.Search(ctx, "agent-1", "engineers", 5, "")
		gt.Bool(t, errors.Is(err, upstream)).True()
	})

	t.Run("not configured", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Profile.Search(ctx, "agent-1", "engineers", 5, "")
		gt.Bool(t, errors.Is(err, usecase.ErrNotAvailable)).True()
	})
}

func TestProfileUseCase_Enrich(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps search order and merges details", func(t *testing.T) {
		detailer := &mockDetailer{detail: func(url string) (*model.DetailedProfile, error) {
			if url == "https://linkedin.com/in/grace" {
				return nil, goerr.New("no detail")
			}
			return detailFor(url)
		}}
		uc := usecase.New(memory.New(),
			usecase.WithProfileSearcher(&mockSearcher{profiles: testProfiles()}),
			usecase.WithProfileDetailer(detailer),
		)
		onboard(t, uc, "agent-1")

		res, err := uc.Profile.Enrich(ctx, "agent-1", "engineers", 0, "")
		gt.NoError(t, err).Required()
		gt.Array(t, res.Profiles).Length(3).Required()

		gt.Value(t, res.Profiles[0].Profile.Name).Equal("Ada Lovelace")
		gt.Value(t, res.Profiles[1].Profile.Name).Equal("Grace Hopper")
		gt.Value(t, res.Profiles[2].Profile.Name).Equal("Alan Turing")

		gt.Value(t, res.Profiles[0].TalkingPoints).Equal([]string{
			"Experience in the Computing industry",
			"Works at Analytical Engines",
			"Expertise in Go, Math, Poetry",
		})
		gt.Value(t, res.Profiles[1].Details).Nil()
		gt.Array(t, res.Profiles[1].TalkingPoints).Length(0)

		contacts, err := uc.Contact.List(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(3).Required()
		gt.Value(t, contacts[0].AdditionalData["company"]).Equal("Analytical Engines")
		gt.Value(t, contacts[0].AdditionalData["enrichedBy"]).Equal("rapidapi")
	})

	t.Run("placeholder details are not stored or used", func(t *testing.T) {
		uc := usecase.New(memory.New(),
			usecase.WithProfileSearcher(&mockSearcher{profiles: testProfiles()[:1]}),
			usecase.WithProfileDetailer(profile.NewDetailChain(profile.Placeholder{})),
		)
		onboard(t, uc, "agent-1")

		res, err := uc.Profile.Enrich(ctx, "agent-1", "engineers", 0, "")
		gt.NoError(t, err).Required()
		gt.Array(t, res.Profiles).Length(1).Required()
		gt.Value(t, res.Profiles[0].Details).Nil()
		gt.Array(t, res.Profiles[0].TalkingPoints).Length(0)

		contacts, err := uc.Contact.List(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(1).Required()
		gt.Value(t, contacts[0].AdditionalData["title"]).Equal("Engineer")
		gt.Value(t, contacts[0].AdditionalData["company"]).Equal("Babbage")
		_, ok := contacts[0].AdditionalData["enrichedBy"]
		gt.False(t, ok)
	})

	t.Run("zero results", func(t *testing.T) {
		uc := usecase.New(memory.New(),
			usecase.WithProfileSearcher(&mockSearcher{}),
			usecase.WithProfileDetailer(&mockDetailer{detail: detailFor}),
		)
		onboard(t, uc, "agent-1")

		res, err := uc.Profile.Enrich(ctx, "agent-1", "nobody", 3, types.EnrichmentPurposeResearch)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Message).Equal(usecase.MsgNoProfiles)
	})
}

func TestProfileUseCase_ProfileData(t *testing.T) {
	ctx := context.Background()
	const url = "https://linkedin.com/in/ada"

	t.Run("caches provider results", func(t *testing.T) {
		detailer := &mockDetailer{detail: detailFor}
		uc := usecase.New(memory.New(), usecase.WithProfileDetailer(detailer))

		for range 2 {
			d, err := uc.Profile.ProfileData(ctx, url)
			gt.NoError(t, err).Required()
			gt.Value(t, d.Company).Equal("Analytical Engines")
		}
		gt.Value(t, detailer.count(url)).Equal(1)
	})

	t.Run("does not cache placeholders", func(t *testing.T) {
		detailer := &mockDetailer{detail: func(url string) (*model.DetailedProfile, error) {
			return &model.DetailedProfile{ProfileURL: url, Placeholder: true}, nil
		}}
		uc := usecase.New(memory.New(), usecase.WithProfileDetailer(detailer))

		for range 2 {
			_, err := uc.Profile.ProfileData(ctx, url)
			gt.NoError(t, err).Required()
		}
		gt.Value(t, detailer.count(url)).Equal(2)
	})

	t.Run("prefers webhook deliveries", func(t *testing.T) {
		detailer := &mockDetailer{detail: detailFor}
		stores := usecase.NewStores(time.Hour, time.Hour)
		stores.Delivered.Set(url, &model.DetailedProfile{ProfileURL: url, Company: "Delivered Co"})
		uc := usecase.New(memory.New(), usecase.WithProfileDetailer(detailer), usecase.WithStores(stores))

		d, err := uc.Profile.ProfileData(ctx, url)
		gt.NoError(t, err).Required()
		gt.Value(t, d.Company).Equal("Delivered Co")
		gt.Value(t, detailer.count(url)).Equal(0)
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithProfileDetailer(&mockDetailer{detail: detailFor}))
		_, err := uc.Profile.ProfileData(ctx, "linkedin.com/in/ada")
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})
}

func TestProfileUseCase_FindEmail(t *testing.T) {
	ctx := context.Background()
	const url = "https://linkedin.com/in/ada"

	newUC := func(f *mockEmailFinder) *usecase.UseCases {
		return usecase.New(memory.New(),
			usecase.WithEmailFinder(f),
			usecase.WithEmailPolling(time.Millisecond, 3),
		)
	}

	t.Run("returns emails once the job succeeds", func(t *testing.T) {
		finder := &mockEmailFinder{
			requestID: "42",
			results: []*model.EmailLookup{
				{Status: model.EmailLookupProcessing},
				{Status: model.EmailLookupSuccess, Emails: []string{"ada@example.com"}},
			},
		}
		res, err := newUC(finder).Profile.FindEmail(ctx, url)
		gt.NoError(t, err).Required()

		gt.Bool(t, res.Success).True()
		gt.Value(t, res.Emails).Equal([]string{"ada@example.com"})
		gt.Value(t, res.RequestID).Equal("42")
		gt.Value(t, finder.polls).Equal(2)
	})

	t.Run("keeps polling after transport errors", func(t *testing.T) {
		finder := &mockEmailFinder{
			requestID: "42",
			errs:      []error{goerr.New("connection reset")},
			results: []*model.EmailLookup{
				nil,
				{Status: model.EmailLookupSuccess, Emails: []string{"ada@example.com"}},
			},
		}
		res, err := newUC(finder).Profile.FindEmail(ctx, url)
		gt.NoError(t, err).Required()
		gt.Bool(t, res.Success).True()
	})

	t.Run("times out with the request ID", func(t *testing.T) {
		finder := &mockEmailFinder{requestID: "42"}
		res, err := newUC(finder).Profile.FindEmail(ctx, url)
		gt.NoError(t, err).Required()

		gt.Bool(t, res.Success).False()
		gt.Value(t, res.Message).Equal(usecase.MsgEmailTimeout)
		gt.Value(t, res.RequestID).Equal("42")
		gt.Value(t, finder.polls).Equal(3)
	})

	t.Run("stops on an error status", func(t *testing.T) {
		finder := &mockEmailFinder{
			requestID: "42",
			results:   []*model.EmailLookup{{Status: model.EmailLookupError, Message: "quota exceeded"}},
		}
		res, err := newUC(finder).Profile.FindEmail(ctx, url)
		gt.NoError(t, err).Required()

		gt.Bool(t, res.Success).False()
		gt.Value(t, res.Message).Equal("Error finding emails: quota exceeded")
		gt.Value(t, finder.polls).Equal(1)
	})

	t.Run("submit failure is an error", func(t *testing.T) {
		finder := &mockEmailFinder{submitErr: goerr.New("refused")}
		_, err := newUC(finder).Profile.FindEmail(ctx, url)
		gt.Error(t, err)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newUC(&mockEmailFinder{requestID: "42"}).Profile.FindEmail(cctx, url)
		gt.Bool(t, errors.Is(err, context.Canceled)).True()
	})
}
