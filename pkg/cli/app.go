package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/cli/config"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/service/similarity"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// appConfig gathers the configuration shared by commands that run use cases
type appConfig struct {
	repo      config.Repository
	service   config.Service
	providers config.Providers
	gemini    config.Gemini
	google    config.Google
	slack     config.Slack
	archive   config.Archive
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.service.Flags()...)
	flags = append(flags, x.providers.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.google.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.archive.Flags()...)
	return flags
}

func (x appConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("repository", x.repo),
		slog.Any("service", x.service),
		slog.Any("providers", x.providers),
		slog.Any("gemini", x.gemini),
		slog.Any("google", x.google),
		slog.Any("slack", x.slack),
		slog.Any("archive", x.archive),
	)
}

// app is a configured set of use cases and the resources behind them
type app struct {
	repo    interfaces.Repository
	uc      *usecase.UseCases
	service *config.ServiceFile
	closers []func()
}

// Close releases resources in reverse order of creation
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires every configured service into the use cases. extra options are
// applied last.
func (x *appConfig) build(ctx context.Context, extra ...usecase.Option) (*app, error) {
	logging.Default().Info("Configuration", "app", x)

	svc, err := x.service.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load service config")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	a := &app{repo: repo, service: svc}
	a.closers = append(a.closers, func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	})

	fail := func(err error, msg string) (*app, error) {
		a.Close()
		return nil, goerr.Wrap(err, msg)
	}

	opts, err := svc.Options()
	if err != nil {
		return fail(err, "invalid service config")
	}

	providerOpts, err := x.providers.Configure(svc)
	if err != nil {
		return fail(err, "failed to configure providers")
	}
	opts = append(opts, providerOpts...)

	llm, err := x.gemini.Configure(ctx)
	if err != nil {
		return fail(err, "failed to configure Gemini")
	}
	if llm != nil {
		opts = append(opts, usecase.WithSimilarityScorer(similarity.New(llm)))
	} else {
		logging.Default().Info("Gemini not configured, similarity scores are 0")
	}

	googleOpts, err := x.google.Configure(repo.OAuthToken())
	if err != nil {
		return fail(err, "failed to configure Google")
	}
	opts = append(opts, googleOpts...)

	notifier, err := x.slack.Configure()
	if err != nil {
		return fail(err, "failed to configure Slack")
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	archive, err := x.archive.Configure(ctx)
	if err != nil {
		return fail(err, "failed to configure archive")
	}
	if archive != nil {
		opts = append(opts, usecase.WithCallbackArchive(archive))
		a.closers = append(a.closers, func() {
			if err := archive.Close(); err != nil {
				logging.Default().Error("failed to close archive", "error", err.Error())
			}
		})
	}

	a.uc = usecase.New(repo, append(opts, extra...)...)
	return a, nil
}
