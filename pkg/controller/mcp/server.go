// Package mcp exposes the use cases as MCP tools. Each agent gets its own
// server instance so tool handlers know who is calling.
package mcp

import (
	"context"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

const (
	// AgentIDHeader identifies the calling agent on the HTTP transport
	AgentIDHeader = "X-Agent-Id"

	serverName = "coffeechat"
)

// Servers builds and keeps one MCP server per agent
type Servers struct {
	uc      *usecase.UseCases
	version string

	mu      sync.Mutex
	servers map[model.AgentID]*mcp.Server
}

func NewServers(uc *usecase.UseCases, version string) *Servers {
	return &Servers{
		uc:      uc,
		version: version,
		servers: make(map[model.AgentID]*mcp.Server),
	}
}

// ForAgent returns the server for id, creating it on first use
func (x *Servers) ForAgent(id model.AgentID) *mcp.Server {
	x.mu.Lock()
	defer x.mu.Unlock()

	if s, ok := x.servers[id]; ok {
		return s
	}
	s := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: x.version}, nil)
	newToolset(x.uc, id).register(s)
	x.servers[id] = s
	return s
}

// Handler serves the streamable HTTP transport. Requests without a valid
// AgentIDHeader get no server.
func (x *Servers) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		id := model.AgentID(r.Header.Get(AgentIDHeader))
		if id.Validate() != nil {
			return nil
		}
		return x.ForAgent(id)
	}, nil)
}

// RunStdio serves one agent over stdin and stdout until ctx is done
func (x *Servers) RunStdio(ctx context.Context, id model.AgentID) error {
	return x.ForAgent(id).Run(ctx, &mcp.StdioTransport{})
}

type toolset struct {
	uc      *usecase.UseCases
	agentID model.AgentID
}

func newToolset(uc *usecase.UseCases, id model.AgentID) *toolset {
	return &toolset{uc: uc, agentID: id}
}

func (x *toolset) onboarded(ctx context.Context) (bool, error) {
	return x.uc.User.IsOnboarded(ctx, x.agentID)
}

func (x *toolset) register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "onboard-user",
		Description: "Onboard a new user by collecting their name, age, resume URL and networking goals. Call this when the user types 'initiate onboarding'.",
	}, x.onboardUser)

	gated(s, x, &mcp.Tool{
		Name:        "get-user-data",
		Description: "Get the profile of the current user",
	}, x.getUserData)

	gated(s, x, &mcp.Tool{
		Name:        "update-user-profile",
		Description: "Update one or more fields of the current user's profile",
	}, x.updateUserProfile)

	gated(s, x, &mcp.Tool{
		Name:        "linkedin-search",
		Description: "Search LinkedIn profiles matching a free-text query. Results are added to the user's contacts.",
	}, x.linkedinSearch)

	gated(s, x, &mcp.Tool{
		Name:        "profile-enrichment",
		Description: "Search LinkedIn profiles and enrich each result with detailed profile data and talking points",
	}, x.profileEnrichment)

	gated(s, x, &mcp.Tool{
		Name:        "linkedin-profile-data",
		Description: "Get detailed profile data for a specific LinkedIn URL",
	}, x.linkedinProfileData)

	gated(s, x, &mcp.Tool{
		Name:        "email-finder",
		Description: "Find email addresses associated with a LinkedIn profile URL. Use the result as the recipient for send-email.",
	}, x.emailFinder)

	gated(s, x, &mcp.Tool{
		Name:        "send-email",
		Description: "Send an HTML email from the user's connected Gmail account",
	}, x.sendEmail)

	gated(s, x, &mcp.Tool{
		Name:        "schedule-coffee-chat",
		Description: "Find people matching the preferred chat partner description and send them coffee chat invitations",
	}, x.scheduleCoffeeChat)

	gated(s, x, &mcp.Tool{
		Name:        "personalized-outreach",
		Description: "Search for contacts, enrich their profiles and send personalized invitations in one workflow",
	}, x.personalizedOutreach)

	gated(s, x, &mcp.Tool{
		Name:        "log-contact-interaction",
		Description: "Record an interaction with a contact, such as a chat or a reply",
	}, x.logContactInteraction)

	gated(s, x, &mcp.Tool{
		Name:        "score-contacts",
		Description: "Recompute response and similarity scores for all of the user's contacts",
	}, x.scoreContacts)

	gated(s, x, &mcp.Tool{
		Name:        "get-contact-visualization",
		Description: "Get the user's contacts ranked by score with chart data",
	}, x.getContactVisualization)

	gated(s, x, &mcp.Tool{
		Name:        "get-oauth-status",
		Description: "Check whether the user's Gmail account is connected and get a link to connect it",
	}, x.getOAuthStatus)
}

func gated[In, Out any](s *mcp.Server, x *toolset, t *mcp.Tool, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s, t, Enforce(x.onboarded, h))
}
