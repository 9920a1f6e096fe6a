package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

var searchForm = Form{
	Title: "LinkedIn Search",
	Tool:  "linkedin-search",
	Fields: []FormField{
		textField("query", "Search query", true),
		{Name: "limit", Label: "Maximum results", Type: "number", Widget: "number"},
		{Name: "searchPurpose", Label: "Purpose (general_search or research)", Type: "string", Widget: "select"},
	},
}

var enrichForm = Form{
	Title: "Profile Enrichment",
	Tool:  "profile-enrichment",
	Fields: []FormField{
		textField("query", "Search query", true),
		{Name: "limit", Label: "Maximum results", Type: "number", Widget: "number"},
		{Name: "enrichmentPurpose", Label: "Purpose (personalization, research or outreach)", Type: "string", Widget: "select"},
	},
}

var profileDataForm = Form{
	Title:  "LinkedIn Profile Data",
	Tool:   "linkedin-profile-data",
	Fields: []FormField{urlField("linkedinUrl", "LinkedIn profile URL")},
}

var emailFinderForm = Form{
	Title:  "Find Email",
	Tool:   "email-finder",
	Fields: []FormField{urlField("linkedinUrl", "LinkedIn profile URL")},
}

type LinkedinSearchInput struct {
	Query         string `json:"query,omitempty" jsonschema:"Free-text description of the people to find"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum number of profiles to return, defaults to 5"`
	SearchPurpose string `json:"searchPurpose,omitempty" jsonschema:"general_search or research"`
}

type LinkedinSearchOutput struct {
	Message  string          `json:"message"`
	Profiles []ProfileOutput `json:"profiles"`
}

func (x *toolset) linkedinSearch(ctx context.Context, _ *mcp.CallToolRequest, in LinkedinSearchInput) (*mcp.CallToolResult, LinkedinSearchOutput, error) {
	purpose := types.SearchPurpose(strings.TrimSpace(in.SearchPurpose))
	if purpose != "" && !purpose.IsValid() {
		v := &model.ValidationError{}
		v.Add("searchPurpose", "Unknown search purpose")
		return fail[LinkedinSearchOutput](ctx, v, searchForm)
	}

	res, err := x.uc.Profile.Search(ctx, x.agentID, in.Query, in.Limit, purpose)
	if err != nil {
		return fail[LinkedinSearchOutput](ctx, err, searchForm)
	}

	out := LinkedinSearchOutput{Message: res.Message, Profiles: toProfileOutputs(res.Profiles)}
	return textResult(out.Message), out, nil
}

type ProfileEnrichmentInput struct {
	Query             string `json:"query,omitempty" jsonschema:"Free-text description of the people to find"`
	Limit             int    `json:"limit,omitempty" jsonschema:"Maximum number of profiles to enrich, defaults to 3"`
	EnrichmentPurpose string `json:"enrichmentPurpose,omitempty" jsonschema:"personalization, research or outreach"`
}

type ProfileEnrichmentOutput struct {
	Message  string                  `json:"message"`
	Profiles []EnrichedProfileOutput `json:"profiles"`
}

func (x *toolset) profileEnrichment(ctx context.Context, _ *mcp.CallToolRequest, in ProfileEnrichmentInput) (*mcp.CallToolResult, ProfileEnrichmentOutput, error) {
	purpose := types.EnrichmentPurpose(strings.TrimSpace(in.EnrichmentPurpose))
	if purpose != "" && !purpose.IsValid() {
		v := &model.ValidationError{}
		v.Add("enrichmentPurpose", "Unknown enrichment purpose")
		return fail[ProfileEnrichmentOutput](ctx, v, enrichForm)
	}

	res, err := x.uc.Profile.Enrich(ctx, x.agentID, in.Query, in.Limit, purpose)
	if err != nil {
		return fail[ProfileEnrichmentOutput](ctx, err, enrichForm)
	}

	out := ProfileEnrichmentOutput{Message: res.Message, Profiles: toEnrichedOutputs(res.Profiles)}
	return textResult(out.Message), out, nil
}

type ProfileURLInput struct {
	LinkedinURL string `json:"linkedinUrl,omitempty" jsonschema:"LinkedIn profile URL"`
}

type ProfileDataOutput struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	ProfileData *DetailedProfileOutput `json:"profileData,omitempty"`
}

func (x *toolset) linkedinProfileData(ctx context.Context, _ *mcp.CallToolRequest, in ProfileURLInput) (*mcp.CallToolResult, ProfileDataOutput, error) {
	if strings.TrimSpace(in.LinkedinURL) == "" {
		return formResult("Please provide a LinkedIn profile URL", profileDataForm, nil), ProfileDataOutput{}, nil
	}

	d, err := x.uc.Profile.ProfileData(ctx, in.LinkedinURL)
	if err != nil {
		return fail[ProfileDataOutput](ctx, err, profileDataForm)
	}

	out := ProfileDataOutput{
		Success:     !d.Placeholder,
		Message:     "Profile data retrieved for " + in.LinkedinURL,
		ProfileData: toDetailedProfileOutput(d),
	}
	if d.Placeholder {
		out.Message = "Detailed profile data is not available yet. Showing basic information only."
	}
	return textResult(out.Message), out, nil
}

type EmailFinderOutput struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Emails    []string `json:"emails"`
	RequestID string   `json:"requestId"`
}

func (x *toolset) emailFinder(ctx context.Context, _ *mcp.CallToolRequest, in ProfileURLInput) (*mcp.CallToolResult, EmailFinderOutput, error) {
	if strings.TrimSpace(in.LinkedinURL) == "" {
		return formResult("Please provide a LinkedIn profile URL", emailFinderForm, nil), EmailFinderOutput{Emails: []string{}}, nil
	}

	res, err := x.uc.Profile.FindEmail(ctx, in.LinkedinURL)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			out := EmailFinderOutput{Message: usecase.MsgEmailTimeout, Emails: []string{}}
			return errorResult(out.Message), out, nil
		}
		return fail[EmailFinderOutput](ctx, err, emailFinderForm)
	}

	out := EmailFinderOutput{
		Success:   res.Success,
		Message:   res.Message,
		Emails:    nonNil(res.Emails),
		RequestID: res.RequestID,
	}
	return textResult(out.Message), out, nil
}
