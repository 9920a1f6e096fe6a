package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	mcpctrl "github.com/secmon-lab/coffeechat/pkg/controller/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMCP(version string) *cli.Command {
	var agentID string
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Agent served over stdio",
			Required:    true,
			Sources:     cli.EnvVars("COFFEECHAT_AGENT_ID"),
			Destination: &agentID,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools for one agent over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.AgentID(agentID)
			if err := id.Validate(); err != nil {
				return goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, agentID))
			}

			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			logging.Default().Info("Serving MCP over stdio", "agentID", id)
			if err := mcpctrl.NewServers(a.uc, version).RunStdio(ctx, id); err != nil {
				return goerr.Wrap(err, "mcp server stopped", goerr.V(model.AgentIDKey, id))
			}
			return nil
		},
	}
}
