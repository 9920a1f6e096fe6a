package usecase

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSearchLimit = 5
	DefaultEnrichLimit = 3

	enrichConcurrency = 3

	MsgNoProfiles     = "No profiles found matching your criteria"
	MsgEmailTimeout   = "Email finding process timed out. Please try again later."
	MsgEmailNotFound  = "No email addresses were found for this profile."
	msgEmailLookupErr = "Error finding emails: %s"
)

type ProfileUseCase struct {
	contacts     *ContactUseCase
	searcher     interfaces.ProfileSearcher
	detailer     interfaces.ProfileDetailer
	emailFinder  interfaces.EmailFinder
	stores       *Stores
	pollInterval time.Duration
	pollAttempts int
}

type SearchResult struct {
	Message  string
	Profiles []*model.Profile
}

// Search finds profiles and records every result as a contact sighting.
// Zero results are not an error.
func (uc *ProfileUseCase) Search(ctx context.Context, id model.AgentID, query string, limit int, purpose types.SearchPurpose) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "search rejected")
	}
	if uc.searcher == nil {
		return nil, goerr.Wrap(ErrNotAvailable, "profile search is not configured")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	profiles, err := uc.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search profiles", goerr.V("query", query))
	}
	logging.From(ctx).Info("profiles searched",
		"agentID", id,
		"query", query,
		"purpose", purpose.Normalize(),
		"count", len(profiles),
	)

	if len(profiles) == 0 {
		return &SearchResult{Message: MsgNoProfiles, Profiles: []*model.Profile{}}, nil
	}

	for _, p := range profiles {
		uc.ingest(ctx, id, p.ContactInput())
	}

	return &SearchResult{
		Message:  fmt.Sprintf("Found %d LinkedIn profiles matching %q", len(profiles), query),
		Profiles: profiles,
	}, nil
}

// EnrichedProfile is a search result with its detail lookup. Details is nil
// when every detail provider failed or only placeholder data was available.
type EnrichedProfile struct {
	Profile       *model.Profile
	Details       *model.DetailedProfile
	TalkingPoints []string
}

type EnrichResult struct {
	Message  string
	Profiles []*EnrichedProfile
}

// Enrich searches and then fetches details for every result concurrently.
// Results keep the search order.
func (uc *ProfileUseCase) Enrich(ctx context.Context, id model.AgentID, query string, limit int, purpose types.EnrichmentPurpose) (*EnrichResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerr.Wrap(ErrEmptyQuery, "enrichment rejected")
	}
	if uc.searcher == nil {
		return nil, goerr.Wrap(ErrNotAvailable, "profile search is not configured")
	}
	if limit <= 0 {
		limit = DefaultEnrichLimit
	}

	profiles, err := uc.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search profiles", goerr.V("query", query))
	}
	if len(profiles) == 0 {
		return &EnrichResult{Message: MsgNoProfiles, Profiles: []*EnrichedProfile{}}, nil
	}

	enriched := make([]*EnrichedProfile, len(profiles))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(enrichConcurrency)
	for i, p := range profiles {
		eg.Go(func() error {
			ep := &EnrichedProfile{Profile: p, TalkingPoints: []string{}}
			details, err := uc.lookup(egCtx, p.ProfileURL)
			switch {
			case err != nil:
				logging.From(egCtx).Warn("profile enrichment failed", "url", p.ProfileURL, "error", err)
			case details.Placeholder:
				// synthetic records are neither stored on contacts nor shown as talking points
				logging.From(egCtx).Info("no profile detail available", "url", p.ProfileURL)
			default:
				ep.Details = details
				ep.TalkingPoints = details.TalkingPoints()
			}
			enriched[i] = ep
			return nil
		})
	}
	_ = eg.Wait()

	for _, ep := range enriched {
		in := ep.Profile.ContactInput()
		if ep.Details != nil {
			maps.Copy(in.AdditionalData, ep.Details.AdditionalData())
		}
		uc.ingest(ctx, id, in)
	}

	logging.From(ctx).Info("profiles enriched",
		"agentID", id,
		"query", query,
		"purpose", purpose.Normalize(),
		"count", len(enriched),
	)

	return &EnrichResult{
		Message:  fmt.Sprintf("Found and enriched %d LinkedIn profiles matching %q", len(enriched), query),
		Profiles: enriched,
	}, nil
}

// ProfileData returns details for one profile URL
func (uc *ProfileUseCase) ProfileData(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	profileURL = strings.TrimSpace(profileURL)
	if !model.IsHTTPURL(profileURL) {
		return nil, goerr.Wrap(model.ErrValidation, "profile URL is invalid", goerr.V(URLKey, profileURL))
	}
	return uc.lookup(ctx, profileURL)
}

// lookup checks webhook deliveries, then the cache, then the detail chain.
// Placeholder records are never cached.
func (uc *ProfileUseCase) lookup(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	if d, _, ok := uc.stores.Delivered.Get(profileURL); ok {
		return d, nil
	}
	if d, _, ok := uc.stores.Profiles.Get(profileURL); ok {
		return d, nil
	}
	if uc.detailer == nil {
		return nil, goerr.Wrap(ErrNotAvailable, "profile detail is not configured")
	}

	d, err := uc.detailer.Detail(ctx, profileURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get profile detail", goerr.V(URLKey, profileURL))
	}
	if !d.Placeholder {
		uc.stores.Profiles.Set(profileURL, d)
	}
	return d, nil
}

func (uc *ProfileUseCase) ingest(ctx context.Context, id model.AgentID, in model.ContactInput) {
	if _, err := uc.contacts.Upsert(ctx, id, in, false); err != nil {
		logging.From(ctx).Warn("failed to ingest contact", "agentID", id, "name", in.Name, "error", err)
	}
}

type EmailResult struct {
	Success   bool
	Message   string
	Emails    []string
	RequestID string
}

// FindEmail submits a lookup job and polls it. Running out of attempts
// yields an unsuccessful result carrying the request ID, not an error.
func (uc *ProfileUseCase) FindEmail(ctx context.Context, profileURL string) (*EmailResult, error) {
	if uc.emailFinder == nil {
		return nil, goerr.Wrap(ErrNotAvailable, "email finder is not configured")
	}
	profileURL = strings.TrimSpace(profileURL)
	if !model.IsHTTPURL(profileURL) {
		return nil, goerr.Wrap(model.ErrValidation, "profile URL is invalid", goerr.V(URLKey, profileURL))
	}

	requestID, err := uc.emailFinder.Submit(ctx, profileURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit email lookup", goerr.V(URLKey, profileURL))
	}
	logger := logging.From(ctx).With("requestID", requestID)
	logger.Info("email lookup submitted", "url", profileURL)

	for attempt := range uc.pollAttempts {
		select {
		case <-ctx.Done():
			return nil, goerr.Wrap(ctx.Err(), "email lookup cancelled", goerr.V(RequestIDKey, requestID))
		case <-time.After(uc.pollInterval):
		}

		res, err := uc.emailFinder.Result(ctx, requestID)
		if err != nil {
			logger.Warn("email lookup poll failed", "attempt", attempt+1, "error", err)
			continue
		}

		switch res.Status {
		case model.EmailLookupSuccess:
			if len(res.Emails) == 0 {
				return &EmailResult{Message: MsgEmailNotFound, Emails: []string{}, RequestID: requestID}, nil
			}
			return &EmailResult{
				Success:   true,
				Message:   fmt.Sprintf("Found %d email(s) for %s", len(res.Emails), profileURL),
				Emails:    res.Emails,
				RequestID: requestID,
			}, nil

		case model.EmailLookupError:
			msg := res.Message
			if msg == "" {
				msg = "Unknown error"
			}
			return &EmailResult{
				Message:   fmt.Sprintf(msgEmailLookupErr, msg),
				Emails:    []string{},
				RequestID: requestID,
			}, nil
		}
		logger.Debug("email lookup still processing", "attempt", attempt+1)
	}

	return &EmailResult{Message: MsgEmailTimeout, Emails: []string{}, RequestID: requestID}, nil
}
