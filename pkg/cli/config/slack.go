package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/service/notify"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	webhookURL string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for outreach summaries",
			Category:    "Slack",
			Destination: &x.webhookURL,
			Sources:     cli.EnvVars("COFFEECHAT_SLACK_WEBHOOK_URL"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("webhook-url.len", len(x.webhookURL)),
	)
}

// Configure returns nil when no webhook is set
func (x *Slack) Configure() (*notify.Slack, error) {
	if x.webhookURL == "" {
		return nil, nil
	}
	n, err := notify.NewSlack(x.webhookURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure slack notifier")
	}
	return n, nil
}
