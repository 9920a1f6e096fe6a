package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/cli/config"
	httpctrl "github.com/secmon-lab/coffeechat/pkg/controller/http"
	mcpctrl "github.com/secmon-lab/coffeechat/pkg/controller/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/service/worker"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var queueSize int
	var appCfg appConfig
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COFFEECHAT_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "callback-queue-size",
			Usage:       "Maximum number of SignalHire callbacks waiting to be processed",
			Value:       100,
			Sources:     cli.EnvVars("COFFEECHAT_CALLBACK_QUEUE_SIZE"),
			Destination: &queueSize,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server with the MCP endpoint and webhooks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			// the handler runs only after Start, when uc is set
			var uc *usecase.UseCases
			queue := worker.NewQueue("signalhire-callback", queueSize, func(ctx context.Context, rec *model.CallbackRecord) error {
				return uc.SignalHire.ProcessCallback(ctx, rec)
			})

			a, err := appCfg.build(ctx, usecase.WithCallbackQueue(queue))
			if err != nil {
				return err
			}
			defer a.Close()
			uc = a.uc

			sweepInterval, err := a.service.SweepInterval()
			if err != nil {
				return goerr.Wrap(err, "invalid sweep interval")
			}
			stores := uc.Stores()
			sweeper := worker.NewSweepWorker(sweepInterval, map[string]worker.SweepTarget{
				"callbacks": stores.Callbacks,
				"delivered": stores.Delivered,
				"profiles":  stores.Profiles,
			})

			if err := queue.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start callback queue")
			}
			if err := sweeper.Start(ctx); err != nil {
				queue.Stop()
				return goerr.Wrap(err, "failed to start sweep worker")
			}

			servers := mcpctrl.NewServers(uc, version)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithMCP(servers.Handler())),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				sweeper.Stop()
				queue.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				sweeper.Stop()
				queue.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
