package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Slack posts outreach summaries to an incoming webhook
type Slack struct {
	webhookURL string
}

var _ interfaces.Notifier = (*Slack)(nil)

// NewSlack creates a Slack notifier
func NewSlack(webhookURL string) (*Slack, error) {
	if webhookURL == "" {
		return nil, goerr.New("Slack webhook URL is required")
	}
	return &Slack{webhookURL: webhookURL}, nil
}

// NotifyOutreach posts one message per outreach batch
func (x *Slack) NotifyOutreach(ctx context.Context, agentID model.AgentID, result *model.OutreachResult) error {
	text := outreachText(agentID, result)
	msg := &slack.WebhookMessage{
		Text: text,
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil),
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, x.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack webhook", goerr.V("agentID", agentID))
	}
	return nil
}

func outreachText(agentID model.AgentID, result *model.OutreachResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Coffee chat outreach* for `%s`: %d sent, %d failed", agentID, result.SentCount, result.FailedCount)
	if result.AuthFailed {
		sb.WriteString("\n:warning: Gmail authorization failed, the user must reconnect.")
	}
	for _, d := range result.Deliveries {
		mark := ":white_check_mark:"
		if !d.Sent {
			mark = ":x:"
		}
		fmt.Fprintf(&sb, "\n%s %s", mark, d.Recipient.Name)
		if d.Recipient.Title != "" {
			fmt.Fprintf(&sb, " (%s)", d.Recipient.Title)
		}
	}
	return sb.String()
}
