package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore indexes used by the user repository",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("COFFEECHAT_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Value:       "(default)",
				Sources:     cli.EnvVars("COFFEECHAT_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Print the migration plan without applying it",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default().With("projectID", projectID, "databaseID", databaseID)
			logger.Info("Starting index migration", "dryRun", dryRun)

			indexes := indexConfig()
			client, err := fireconf.New(ctx, projectID, databaseID, indexes, fireconf.WithLogger(logger))
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if !dryRun {
				if err := client.Migrate(ctx); err != nil {
					return goerr.Wrap(err, "failed to apply migrations")
				}
				logger.Info("Indexes are up to date")
				return nil
			}

			names := make([]string, len(indexes.Collections))
			for i, col := range indexes.Collections {
				names[i] = col.Name
			}
			current, err := client.Import(ctx, names...)
			if err != nil {
				return goerr.Wrap(err, "failed to import current indexes")
			}
			diff, err := client.DiffConfigs(current)
			if err != nil {
				return goerr.Wrap(err, "failed to create migration plan")
			}
			if len(diff.Collections) == 0 {
				logger.Info("No changes required")
				return nil
			}
			for _, col := range diff.Collections {
				logger.Info("Planned change",
					"collection", col.Name,
					"action", col.Action,
					"add", len(col.IndexesToAdd),
					"delete", len(col.IndexesToDelete))
			}
			return nil
		},
	}
}

// indexConfig lists the composite indexes queried by the Firestore repository
func indexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "users",
				Indexes: []fireconf.Index{
					// ListOnboarded: onboarded ASC, updatedAt DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "onboarded", Order: fireconf.OrderAscending},
							{Path: "updatedAt", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
