package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// ServiceFile is the TOML service configuration
type ServiceFile struct {
	Outreach    OutreachSection    `toml:"outreach"`
	Providers   ProvidersSection   `toml:"providers"`
	Cache       CacheSection       `toml:"cache"`
	EmailFinder EmailFinderSection `toml:"email_finder"`
}

type OutreachSection struct {
	SenderName string `toml:"sender_name"`
	Subject    string `toml:"subject"`
	// Template is an html/template body. Empty uses the built-in invitation.
	Template string `toml:"template"`
}

type ProvidersSection struct {
	Search []string `toml:"search"`
	Detail []string `toml:"detail"`
	// Placeholder appends the placeholder provider to the detail chain
	Placeholder *bool `toml:"placeholder"`
}

type CacheSection struct {
	ProfileTTL    string `toml:"profile_ttl"`
	CallbackTTL   string `toml:"callback_ttl"`
	SweepInterval string `toml:"sweep_interval"`
}

type EmailFinderSection struct {
	PollInterval string `toml:"poll_interval"`
	PollAttempts int    `toml:"poll_attempts"`
}

// DefaultServiceFile returns the configuration used without a file
func DefaultServiceFile() *ServiceFile {
	placeholder := true
	return &ServiceFile{
		Providers: ProvidersSection{
			Search:      []string{types.ProviderLinkd.String()},
			Detail:      []string{types.ProviderSignalHire.String(), types.ProviderRapidAPI.String()},
			Placeholder: &placeholder,
		},
		Cache: CacheSection{
			ProfileTTL:    "1h",
			CallbackTTL:   "24h",
			SweepInterval: "1h",
		},
		EmailFinder: EmailFinderSection{
			PollInterval: "2s",
			PollAttempts: 5,
		},
	}
}

// LoadServiceFile reads path over the defaults. Keys missing in the file keep
// their default values.
func LoadServiceFile(path string) (*ServiceFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "service config not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	cfg := DefaultServiceFile()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return cfg, nil
}

func parseProviders(section string, names []string, allowed func(types.ProviderName) bool) ([]types.ProviderName, error) {
	out := make([]types.ProviderName, 0, len(names))
	for _, name := range names {
		p, err := types.ParseProviderName(name)
		if err != nil {
			return nil, goerr.Wrap(ErrUnknownProvider, "unknown provider in chain",
				goerr.V(SectionKey, section),
				goerr.V(ProviderKey, name),
			)
		}
		if !allowed(p) {
			return nil, goerr.Wrap(ErrInvalidConfig, "provider does not support this chain",
				goerr.V(SectionKey, section),
				goerr.V(ProviderKey, name),
			)
		}
		out = append(out, p)
	}
	return out, nil
}

// SearchProviders returns the ordered search chain
func (x *ServiceFile) SearchProviders() ([]types.ProviderName, error) {
	return parseProviders("providers.search", x.Providers.Search, func(p types.ProviderName) bool {
		return p == types.ProviderLinkd
	})
}

// DetailProviders returns the ordered detail chain, without the placeholder
// fallback
func (x *ServiceFile) DetailProviders() ([]types.ProviderName, error) {
	return parseProviders("providers.detail", x.Providers.Detail, func(p types.ProviderName) bool {
		return p == types.ProviderSignalHire || p == types.ProviderRapidAPI
	})
}

// UsePlaceholder defaults to true
func (x *ServiceFile) UsePlaceholder() bool {
	return x.Providers.Placeholder == nil || *x.Providers.Placeholder
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, goerr.Wrap(ErrInvalidDuration, "duration must be positive", goerr.V("key", key), goerr.V("value", s))
	}
	return d, nil
}

func (x *ServiceFile) ProfileTTL() (time.Duration, error) {
	return parseDuration("cache.profile_ttl", x.Cache.ProfileTTL, usecase.DefaultProfileTTL)
}

func (x *ServiceFile) CallbackTTL() (time.Duration, error) {
	return parseDuration("cache.callback_ttl", x.Cache.CallbackTTL, usecase.DefaultCallbackTTL)
}

func (x *ServiceFile) SweepInterval() (time.Duration, error) {
	return parseDuration("cache.sweep_interval", x.Cache.SweepInterval, time.Hour)
}

func (x *ServiceFile) PollInterval() (time.Duration, error) {
	return parseDuration("email_finder.poll_interval", x.EmailFinder.PollInterval, 2*time.Second)
}

// OutreachConfig compiles the outreach section
func (x *ServiceFile) OutreachConfig() (*usecase.OutreachConfig, error) {
	cfg, err := usecase.NewOutreachConfig(x.Outreach.SenderName, x.Outreach.Subject, x.Outreach.Template)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid outreach template", goerr.V("error", err.Error()))
	}
	return cfg, nil
}

// Validate checks every section
func (x *ServiceFile) Validate() error {
	if _, err := x.SearchProviders(); err != nil {
		return err
	}
	if _, err := x.DetailProviders(); err != nil {
		return err
	}
	for _, f := range []func() (time.Duration, error){x.ProfileTTL, x.CallbackTTL, x.SweepInterval, x.PollInterval} {
		if _, err := f(); err != nil {
			return err
		}
	}
	if x.EmailFinder.PollAttempts < 0 {
		return goerr.Wrap(ErrInvalidConfig, "email_finder.poll_attempts must not be negative")
	}
	if _, err := x.OutreachConfig(); err != nil {
		return err
	}
	return nil
}

// Options converts the file into use case options
func (x *ServiceFile) Options() ([]usecase.Option, error) {
	outreach, err := x.OutreachConfig()
	if err != nil {
		return nil, err
	}
	profileTTL, err := x.ProfileTTL()
	if err != nil {
		return nil, err
	}
	callbackTTL, err := x.CallbackTTL()
	if err != nil {
		return nil, err
	}
	interval, err := x.PollInterval()
	if err != nil {
		return nil, err
	}
	attempts := x.EmailFinder.PollAttempts
	if attempts == 0 {
		attempts = 5
	}

	return []usecase.Option{
		usecase.WithOutreachConfig(outreach),
		usecase.WithStores(usecase.NewStores(callbackTTL, profileTTL)),
		usecase.WithEmailPolling(interval, attempts),
	}, nil
}

// Service holds the --config flag
type Service struct {
	path string
}

func (x *Service) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to service configuration TOML file",
			Destination: &x.path,
			Sources:     cli.EnvVars("COFFEECHAT_CONFIG"),
		},
	}
}

func (x Service) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the file or returns the defaults when no path is set
func (x *Service) Configure() (*ServiceFile, error) {
	if x.path == "" {
		return DefaultServiceFile(), nil
	}
	return LoadServiceFile(x.path)
}
