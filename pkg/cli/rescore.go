package cli

import (
	"context"

	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdRescore() *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "rescore",
		Usage: "Recompute and persist contact scores of every onboarded user",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.uc.Contact.RescoreAll(ctx)
			if err != nil {
				return err
			}
			logging.Default().Info("Rescore completed", "users", n)
			return nil
		},
	}
}
