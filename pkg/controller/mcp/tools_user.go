package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

// EmptyInput is the input of tools without parameters
type EmptyInput struct{}

var onboardForm = Form{
	Title: "Welcome! Let's get you onboarded",
	Tool:  "onboard-user",
	Fields: []FormField{
		textField("name", "Full Name", true),
		{Name: "age", Label: "Age", Type: "number", Widget: "number", Required: true},
		urlField("resumeUrl", "Resume URL"),
		{Name: "goals", Label: "What are your networking goals?", Type: "string", Widget: "textarea", Required: true},
	},
}

var updateProfileForm = Form{
	Title: "Update Your Profile",
	Tool:  "update-user-profile",
	Fields: []FormField{
		textField("name", "Full Name", false),
		{Name: "age", Label: "Age", Type: "number", Widget: "number"},
		{Name: "resumeUrl", Label: "Resume URL", Type: "string", Widget: "url"},
		{Name: "goals", Label: "Networking goals", Type: "string", Widget: "textarea"},
	},
}

type OnboardUserInput struct {
	Name      string `json:"name,omitempty" jsonschema:"Full name of the user"`
	Age       int    `json:"age,omitempty" jsonschema:"Age of the user, at least 18"`
	ResumeURL string `json:"resumeUrl,omitempty" jsonschema:"Public URL of the user's resume"`
	Goals     string `json:"goals,omitempty" jsonschema:"Networking goals, at least 50 characters"`
}

type StatusOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (in OnboardUserInput) missing() bool {
	return in.Name == "" && in.Age == 0 && in.ResumeURL == "" && in.Goals == ""
}

func (x *toolset) onboardUser(ctx context.Context, _ *mcp.CallToolRequest, in OnboardUserInput) (*mcp.CallToolResult, StatusOutput, error) {
	if ok, err := x.onboarded(ctx); err == nil && ok {
		out := StatusOutput{Message: usecase.MsgAlreadyOnboarded}
		return textResult(out.Message), out, nil
	}
	if in.missing() {
		return formResult("Please fill out the onboarding form", onboardForm, nil), StatusOutput{}, nil
	}

	_, err := x.uc.User.Onboard(ctx, x.agentID, model.OnboardingInput{
		Name:      in.Name,
		Age:       in.Age,
		ResumeURL: in.ResumeURL,
		Goals:     in.Goals,
	})
	if errors.Is(err, usecase.ErrAlreadyOnboarded) {
		out := StatusOutput{Message: usecase.MsgAlreadyOnboarded}
		return textResult(out.Message), out, nil
	}
	if err != nil {
		return fail[StatusOutput](ctx, err, onboardForm)
	}

	out := StatusOutput{Success: true, Message: usecase.MsgOnboarded}
	return textResult(out.Message), out, nil
}

type UserDataOutput struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	ResumeURL string `json:"resumeUrl"`
	Goals     string `json:"goals"`
}

func (x *toolset) getUserData(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, UserDataOutput, error) {
	user, err := x.uc.User.Get(ctx, x.agentID)
	if err != nil {
		return fail[UserDataOutput](ctx, err, Form{})
	}

	out := UserDataOutput{Name: user.Name, Age: user.Age, ResumeURL: user.ResumeURL, Goals: user.Goals}
	return textResult("Profile of " + user.Name), out, nil
}

type UpdateUserProfileInput struct {
	Name      *string `json:"name,omitempty" jsonschema:"New full name"`
	Age       *int    `json:"age,omitempty" jsonschema:"New age, at least 18"`
	ResumeURL *string `json:"resumeUrl,omitempty" jsonschema:"New resume URL"`
	Goals     *string `json:"goals,omitempty" jsonschema:"New networking goals, at least 50 characters"`
}

func (x *toolset) updateUserProfile(ctx context.Context, _ *mcp.CallToolRequest, in UpdateUserProfileInput) (*mcp.CallToolResult, StatusOutput, error) {
	_, err := x.uc.User.UpdateProfile(ctx, x.agentID, model.ProfileUpdate{
		Name:      in.Name,
		Age:       in.Age,
		ResumeURL: in.ResumeURL,
		Goals:     in.Goals,
	})
	if err != nil {
		return fail[StatusOutput](ctx, err, updateProfileForm)
	}

	out := StatusOutput{Success: true, Message: usecase.MsgProfileUpdated}
	return textResult(out.Message), out, nil
}
