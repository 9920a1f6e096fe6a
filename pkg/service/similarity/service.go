package similarity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// Scorer rates contacts against a user's goals with an LLM
type Scorer struct {
	llmClient gollem.LLMClient
}

var _ interfaces.SimilarityScorer = (*Scorer)(nil)

// New creates a Scorer. A nil client yields a Scorer that always returns 0.
func New(llmClient gollem.LLMClient) *Scorer {
	return &Scorer{llmClient: llmClient}
}

// Score returns a value in [0, 100]. Failures are logged and score 0.
func (x *Scorer) Score(ctx context.Context, user *model.User, contact *model.Contact) float64 {
	score, err := x.score(ctx, user, contact)
	if err != nil {
		logging.From(ctx).Warn("similarity scoring failed", "contact", contact.ID, "error", err)
		return 0
	}
	return score
}

func (x *Scorer) score(ctx context.Context, user *model.User, contact *model.Contact) (float64, error) {
	if x.llmClient == nil {
		return 0, goerr.New("LLM client is not configured")
	}

	prompt, err := buildPrompt(user, contact)
	if err != nil {
		return 0, err
	}

	session, err := x.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(prompt)})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return 0, goerr.New("empty LLM response")
	}

	return parseScore(strings.Join(resp.Texts, ""))
}

const systemPrompt = "You rate how well a professional contact matches a person's networking goals. Reply with a single number between 0 and 100 and nothing else."

func buildPrompt(user *model.User, contact *model.Contact) (string, error) {
	data := contact.AdditionalData
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal contact data", goerr.V("contact", contact.ID))
	}

	var sb strings.Builder
	sb.WriteString("Rate the similarity between this user and the contact on a scale of 0 to 100.\n\n")
	fmt.Fprintf(&sb, "User resume: %s\n", user.ResumeURL)
	fmt.Fprintf(&sb, "User goals: %s\n\n", user.Goals)
	fmt.Fprintf(&sb, "Contact name: %s\n", contact.Name)
	fmt.Fprintf(&sb, "Contact profile: %s\n\n", raw)
	sb.WriteString("Respond with only the number.")
	return sb.String(), nil
}

// parseScore accepts a bare number with surrounding whitespace
func parseScore(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, goerr.Wrap(err, "LLM reply is not a number", goerr.V("reply", text))
	}
	return model.ClampScore(v), nil
}
