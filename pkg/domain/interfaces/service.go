package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

// ErrAuthRequired means the agent's credential is missing, expired beyond
// refresh, or rejected. Account-level: retrying other messages will not help.
var ErrAuthRequired = goerr.New("authorization required")

// Mailer sends email on behalf of an agent
type Mailer interface {
	// Send delivers msg and returns the provider's message ID. Errors matching
	// ErrAuthRequired are account-level failures.
	Send(ctx context.Context, agentID model.AgentID, msg *model.EmailMessage) (string, error)
}

// ProfileSearcher finds profiles for a free-text query
type ProfileSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]*model.Profile, error)
}

// ProfileDetailer fetches an enriched profile by profile URL
type ProfileDetailer interface {
	Detail(ctx context.Context, profileURL string) (*model.DetailedProfile, error)
}

// SimilarityScorer rates how well a contact matches a user's goals, 0 to 100.
// Implementations return 0 instead of an error when scoring fails.
type SimilarityScorer interface {
	Score(ctx context.Context, user *model.User, contact *model.Contact) float64
}

// EmailFinder submits and polls asynchronous email lookup jobs
type EmailFinder interface {
	Submit(ctx context.Context, profileURL string) (string, error)
	Result(ctx context.Context, requestID string) (*model.EmailLookup, error)
}

// Notifier posts operational summaries
type Notifier interface {
	NotifyOutreach(ctx context.Context, agentID model.AgentID, result *model.OutreachResult) error
}

// CallbackArchive keeps raw webhook bodies
type CallbackArchive interface {
	Put(ctx context.Context, requestID string, body []byte) error
}

// OAuthProviderClient runs the authorization code flow against an identity provider
type OAuthProviderClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*model.OAuthToken, error)
}
