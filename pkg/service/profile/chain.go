package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// Capability is a bit set of operations a provider supports
type Capability uint8

const (
	CapSearch Capability = 1 << iota
	CapDetail
)

// Has reports whether c includes every bit of other
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// Provider is one upstream profile source
type Provider interface {
	Name() types.ProviderName
	Capabilities() Capability
}

// Searcher is a provider offering free-text search
type Searcher interface {
	Provider
	Search(ctx context.Context, query string, limit int) ([]*model.Profile, error)
}

// Detailer is a provider offering profile enrichment by URL
type Detailer interface {
	Provider
	Detail(ctx context.Context, profileURL string) (*model.DetailedProfile, error)
}

// Attempt records a failed call to one provider
type Attempt struct {
	Provider types.ProviderName
	Err      error
}

// ChainError is returned when every provider of a chain failed. errors.Is
// matches any of the recorded typed errors.
type ChainError struct {
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Provider, a.Err)
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

func (e *ChainError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Last returns the error of the last attempt
func (e *ChainError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

// SearchChain tries searchers in order and fails when all of them fail
type SearchChain struct {
	providers []Searcher
}

// NewSearchChain builds a strict search chain
func NewSearchChain(providers ...Searcher) *SearchChain {
	return &SearchChain{providers: providers}
}

// Search returns the first successful result. An empty result is a success.
func (c *SearchChain) Search(ctx context.Context, query string, limit int) ([]*model.Profile, error) {
	if len(c.providers) == 0 {
		return nil, goerr.Wrap(ErrNotConfigured, "no search provider configured")
	}

	chainErr := &ChainError{}
	for _, p := range c.providers {
		profiles, err := p.Search(ctx, query, limit)
		if err == nil {
			return profiles, nil
		}
		logging.From(ctx).Warn("search provider failed", "provider", p.Name(), "error", err)
		chainErr.Attempts = append(chainErr.Attempts, Attempt{Provider: p.Name(), Err: err})
	}

	return nil, goerr.Wrap(chainErr, "profile search failed", goerr.V("query", query))
}

// DetailChain tries detailers in order. Ending it with a Placeholder makes
// it resilient: Detail then never fails.
type DetailChain struct {
	providers []Detailer
}

// NewDetailChain builds a detail chain
func NewDetailChain(providers ...Detailer) *DetailChain {
	return &DetailChain{providers: providers}
}

// Detail returns the first successful result. A pending lookup is recorded
// and the next provider is tried.
func (c *DetailChain) Detail(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	if len(c.providers) == 0 {
		return nil, goerr.Wrap(ErrNotConfigured, "no detail provider configured")
	}

	chainErr := &ChainError{}
	for _, p := range c.providers {
		profile, err := p.Detail(ctx, profileURL)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, ErrPending) {
			logging.From(ctx).Info("detail lookup pending", "provider", p.Name(), "url", profileURL)
		} else {
			logging.From(ctx).Warn("detail provider failed", "provider", p.Name(), "error", err)
		}
		chainErr.Attempts = append(chainErr.Attempts, Attempt{Provider: p.Name(), Err: err})
	}

	return nil, goerr.Wrap(chainErr, "profile detail failed", goerr.V("url", profileURL))
}

// Names lists the providers of a chain in order
func (c *DetailChain) Names() []types.ProviderName {
	names := make([]types.ProviderName, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Names lists the providers of a chain in order
func (c *SearchChain) Names() []types.ProviderName {
	names := make([]types.ProviderName, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}
