package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdContacts() *cli.Command {
	var agentID string
	var rescore bool
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "agent-id",
			Usage:       "Agent whose contacts are listed",
			Required:    true,
			Sources:     cli.EnvVars("COFFEECHAT_AGENT_ID"),
			Destination: &agentID,
		},
		&cli.BoolFlag{
			Name:        "rescore",
			Usage:       "Recompute scores before listing",
			Destination: &rescore,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "contacts",
		Usage: "Print an agent's contacts ranked by score",
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

			if rescore {
				if _, err := a.uc.Contact.Rescore(ctx, id); err != nil {
					return err
				}
			}

			v, err := a.uc.Contact.Visualization(ctx, id)
			if err != nil {
				return err
			}
			printContacts(os.Stdout, v.Contacts)
			return nil
		},
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 70:
		return color.New(color.FgGreen, color.Bold)
	case score >= 40:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// printContacts writes one ranked line per contact, contacts already sorted
func printContacts(w io.Writer, contacts []*model.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(w, "No contacts yet")
		return
	}

	header := color.New(color.Bold)
	header.Fprintf(w, "%-4s %-28s %-32s %8s %8s %8s\n", "#", "NAME", "EMAIL", "AVG", "RESP", "SIM")
	for i, c := range contacts {
		fmt.Fprintf(w, "%-4d %-28s %-32s ", i+1, c.Name, c.Email)
		scoreColor(c.AverageScore()).Fprintf(w, "%8.2f", c.AverageScore())
		fmt.Fprint(w, " ")
		scoreColor(c.ResponseScore).Fprintf(w, "%8.2f", c.ResponseScore)
		fmt.Fprint(w, " ")
		scoreColor(c.SimilarityScore).Fprintf(w, "%8.2f", c.SimilarityScore)
		fmt.Fprintln(w)
	}
}
