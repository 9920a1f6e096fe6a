package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/service/emailfinder"
	"github.com/secmon-lab/coffeechat/pkg/service/profile"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Providers holds credentials for the upstream profile and email services.
// A provider without credentials is left out of its chain.
type Providers struct {
	linkdAPIKey           string
	linkdBaseURL          string
	rapidAPIKey           string
	signalHireAPIKey      string
	signalHireCallbackURL string
	emailFinderURL        string
	timeout               time.Duration
}

func (x *Providers) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "linkd-api-key",
			Usage:       "Linkd API key for profile search",
			Category:    "Providers",
			Destination: &x.linkdAPIKey,
			Sources:     cli.EnvVars("COFFEECHAT_LINKD_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "linkd-base-url",
			Usage:       "Linkd API base URL",
			Category:    "Providers",
			Destination: &x.linkdBaseURL,
			Sources:     cli.EnvVars("COFFEECHAT_LINKD_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "rapidapi-key",
			Usage:       "RapidAPI key for LinkedIn profile details",
			Category:    "Providers",
			Destination: &x.rapidAPIKey,
			Sources:     cli.EnvVars("COFFEECHAT_RAPIDAPI_KEY"),
		},
		&cli.StringFlag{
			Name:        "signalhire-api-key",
			Usage:       "SignalHire API key",
			Category:    "Providers",
			Destination: &x.signalHireAPIKey,
			Sources:     cli.EnvVars("COFFEECHAT_SIGNALHIRE_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "signalhire-callback-url",
			Usage:       "Public URL of POST /signalhire/callback",
			Category:    "Providers",
			Destination: &x.signalHireCallbackURL,
			Sources:     cli.EnvVars("COFFEECHAT_SIGNALHIRE_CALLBACK_URL"),
		},
		&cli.StringFlag{
			Name:        "email-finder-url",
			Usage:       "Base URL of the email finder job API",
			Category:    "Providers",
			Destination: &x.emailFinderURL,
			Sources:     cli.EnvVars("COFFEECHAT_EMAIL_FINDER_URL"),
		},
		&cli.DurationFlag{
			Name:        "provider-timeout",
			Usage:       "Timeout of a single upstream request",
			Category:    "Providers",
			Value:       30 * time.Second,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("COFFEECHAT_PROVIDER_TIMEOUT"),
		},
	}
}

func (x Providers) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("linkd-api-key.len", len(x.linkdAPIKey)),
		slog.String("linkd-base-url", x.linkdBaseURL),
		slog.Int("rapidapi-key.len", len(x.rapidAPIKey)),
		slog.Int("signalhire-api-key.len", len(x.signalHireAPIKey)),
		slog.String("signalhire-callback-url", x.signalHireCallbackURL),
		slog.String("email-finder-url", x.emailFinderURL),
		slog.String("timeout", x.timeout.String()),
	)
}

func (x *Providers) httpOptions() []profile.Option {
	return []profile.Option{profile.WithTimeout(x.timeout)}
}

func (x *Providers) searcher(name types.ProviderName) (profile.Searcher, error) {
	switch name {
	case types.ProviderLinkd:
		if x.linkdAPIKey == "" {
			return nil, nil
		}
		opts := x.httpOptions()
		if x.linkdBaseURL != "" {
			opts = append(opts, profile.WithBaseURL(x.linkdBaseURL))
		}
		return profile.NewLinkd(x.linkdAPIKey, opts...)
	}
	return nil, goerr.Wrap(ErrUnknownProvider, "not a search provider", goerr.V(ProviderKey, name))
}

func (x *Providers) detailer(name types.ProviderName) (profile.Detailer, error) {
	switch name {
	case types.ProviderSignalHire:
		if x.signalHireAPIKey == "" || x.signalHireCallbackURL == "" {
			return nil, nil
		}
		return profile.NewSignalHire(x.signalHireAPIKey, x.signalHireCallbackURL, x.httpOptions()...)
	case types.ProviderRapidAPI:
		if x.rapidAPIKey == "" {
			return nil, nil
		}
		return profile.NewRapidAPI(x.rapidAPIKey, x.httpOptions()...)
	}
	return nil, goerr.Wrap(ErrUnknownProvider, "not a detail provider", goerr.V(ProviderKey, name))
}

// Configure builds the provider chains in the order set by svc
func (x *Providers) Configure(svc *ServiceFile) ([]usecase.Option, error) {
	var opts []usecase.Option
	logger := logging.Default()

	searchNames, err := svc.SearchProviders()
	if err != nil {
		return nil, err
	}
	var searchers []profile.Searcher
	for _, name := range searchNames {
		s, err := x.searcher(name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure search provider", goerr.V(ProviderKey, name))
		}
		if s == nil {
			logger.Info("search provider has no credentials, skipped", "provider", name)
			continue
		}
		searchers = append(searchers, s)
	}
	if len(searchers) > 0 {
		opts = append(opts, usecase.WithProfileSearcher(profile.NewSearchChain(searchers...)))
	} else {
		logger.Info("no search provider configured, profile search is disabled")
	}

	detailNames, err := svc.DetailProviders()
	if err != nil {
		return nil, err
	}
	var detailers []profile.Detailer
	for _, name := range detailNames {
		d, err := x.detailer(name)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure detail provider", goerr.V(ProviderKey, name))
		}
		if d == nil {
			logger.Info("detail provider has no credentials, skipped", "provider", name)
			continue
		}
		detailers = append(detailers, d)
	}
	if svc.UsePlaceholder() {
		detailers = append(detailers, profile.Placeholder{})
	}
	if len(detailers) > 0 {
		opts = append(opts, usecase.WithProfileDetailer(profile.NewDetailChain(detailers...)))
	}

	if x.emailFinderURL != "" {
		finder, err := emailfinder.New(x.emailFinderURL, x.timeout)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure email finder")
		}
		opts = append(opts, usecase.WithEmailFinder(finder))
	} else {
		logger.Info("email finder URL not configured, email lookup is disabled")
	}

	return opts, nil
}
