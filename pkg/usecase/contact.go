package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// scoreConcurrency bounds parallel LLM calls while rescoring
const scoreConcurrency = 3

type ContactUseCase struct {
	repo   interfaces.Repository
	scorer interfaces.SimilarityScorer
	now    func() time.Time
}

func NewContactUseCase(repo interfaces.Repository, scorer interfaces.SimilarityScorer, now func() time.Time) *ContactUseCase {
	if now == nil {
		now = time.Now
	}
	return &ContactUseCase{repo: repo, scorer: scorer, now: now}
}

// Upsert merges in into the user's contact list in one atomic update
func (uc *ContactUseCase) Upsert(ctx context.Context, id model.AgentID, in model.ContactInput, didInteract bool) (*model.Contact, error) {
	var result *model.Contact
	now := uc.now().UTC()

	err := uc.repo.Contact().Update(ctx, id, func(contacts []*model.Contact) ([]*model.Contact, error) {
		out, c, err := model.UpsertContact(contacts, in, didInteract, now)
		if err != nil {
			return nil, err
		}
		result = c
		return out, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert contact", goerr.V(model.AgentIDKey, id), goerr.V("name", in.Name))
	}
	return result, nil
}

// LogInteraction records an explicit interaction with a contact
func (uc *ContactUseCase) LogInteraction(ctx context.Context, id model.AgentID, name, email, notes string) (*model.Contact, error) {
	return uc.Upsert(ctx, id, model.ContactInput{Name: name, Email: email, Notes: notes}, true)
}

func (uc *ContactUseCase) List(ctx context.Context, id model.AgentID) ([]*model.Contact, error) {
	contacts, err := uc.repo.Contact().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contacts", goerr.V(model.AgentIDKey, id))
	}
	return contacts, nil
}

// Rescore recomputes both scores of every contact and persists them.
// Contacts added while scoring are kept and left unscored.
func (uc *ContactUseCase) Rescore(ctx context.Context, id model.AgentID) ([]*model.Contact, error) {
	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(model.AgentIDKey, id))
	}
	contacts, err := uc.List(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	type scores struct{ response, similarity float64 }
	results := make([]scores, len(contacts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(scoreConcurrency)
	for i, c := range contacts {
		eg.Go(func() error {
			results[i].response = model.ResponseScore(c, now)
			if uc.scorer != nil {
				results[i].similarity = model.ClampScore(uc.scorer.Score(egCtx, user, c))
			}
			return nil
		})
	}
	_ = eg.Wait()

	byID := make(map[model.ContactID]scores, len(contacts))
	for i, c := range contacts {
		byID[c.ID] = results[i]
	}

	var updated []*model.Contact
	err = uc.repo.Contact().Update(ctx, id, func(current []*model.Contact) ([]*model.Contact, error) {
		out := model.CopyContacts(current)
		for _, c := range out {
			if s, ok := byID[c.ID]; ok {
				c.ResponseScore = s.response
				c.SimilarityScore = s.similarity
			}
		}
		updated = model.CopyContacts(out)
		return out, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist scores", goerr.V(model.AgentIDKey, id))
	}

	logging.From(ctx).Info("contacts rescored", "agentID", id, "count", len(byID))
	return updated, nil
}

// RescoreAll rescores every onboarded user and returns how many succeeded
func (uc *ContactUseCase) RescoreAll(ctx context.Context) (int, error) {
	users, err := uc.repo.User().ListOnboarded(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list onboarded users")
	}

	done := 0
	for _, u := range users {
		if _, err := uc.Rescore(ctx, u.ID); err != nil {
			logging.From(ctx).Warn("rescore failed", "agentID", u.ID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// ChartPoint is one bar of the contact ranking chart
type ChartPoint struct {
	Name           string
	Value          float64
	Color          string
	AdditionalData map[string]any
}

type Visualization struct {
	Contacts []*model.Contact
	Chart    []ChartPoint
}

// Visualization ranks contacts by the mean of their stored scores
func (uc *ContactUseCase) Visualization(ctx context.Context, id model.AgentID) (*Visualization, error) {
	contacts, err := uc.List(ctx, id)
	if err != nil {
		return nil, err
	}

	sorted := slices.Clone(contacts)
	slices.SortStableFunc(sorted, func(a, b *model.Contact) int {
		switch avgA, avgB := a.AverageScore(), b.AverageScore(); {
		case avgA > avgB:
			return -1
		case avgA < avgB:
			return 1
		default:
			return 0
		}
	})

	chart := make([]ChartPoint, len(sorted))
	for i, c := range sorted {
		chart[i] = ChartPoint{
			Name:           c.Name,
			Value:          c.SimilarityScore,
			Color:          model.ScoreColor(c.ResponseScore),
			AdditionalData: c.AdditionalData,
		}
	}

	return &Visualization{Contacts: sorted, Chart: chart}, nil
}
