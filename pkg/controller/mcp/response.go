package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/service/profile"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/errutil"
)

// FormField is one input of a form prompt
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Widget   string `json:"widget"`
	Required bool   `json:"required"`
	Error    string `json:"error,omitempty"`
}

// Form asks the user for tool input. It is sent as the second text content
// block of a tool result.
type Form struct {
	Type   string      `json:"type"`
	Title  string      `json:"title"`
	Tool   string      `json:"tool"`
	Fields []FormField `json:"fields"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	res := textResult(text)
	res.IsError = true
	return res
}

// formResult renders form with the field errors of verr, if any
func formResult(text string, form Form, verr *model.ValidationError) *mcp.CallToolResult {
	form.Type = "form"
	fields := make([]FormField, len(form.Fields))
	copy(fields, form.Fields)
	if verr != nil {
		for _, fe := range verr.Fields {
			for i := range fields {
				if fields[i].Name == fe.Field {
					fields[i].Error = fe.Message
				}
			}
		}
	}
	form.Fields = fields

	raw, err := json.Marshal(form)
	if err != nil {
		return textResult(text)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
			&mcp.TextContent{Text: string(raw)},
		},
	}
}

func urlField(name, label string) FormField {
	return FormField{Name: name, Label: label, Type: "string", Widget: "url", Required: true}
}

func textField(name, label string, required bool) FormField {
	return FormField{Name: name, Label: label, Type: "string", Widget: "text", Required: required}
}

// fail converts a use case error into a tool result. Validation problems
// become a form prompt, everything else an error result. The returned output
// is schema-shaped so the result still validates.
func fail[Out any](ctx context.Context, err error, form Form) (*mcp.CallToolResult, Out, error) {
	out, perr := Placeholder[Out]()
	if perr != nil {
		_ = errutil.Handle(ctx, perr, "failed to build placeholder output")
	}

	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return formResult(verr.Error(), form, verr), out, nil

	case errors.Is(err, usecase.ErrEmptyQuery),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidContact):
		return formResult("Please fill out the form", form, nil), out, nil

	case errors.Is(err, usecase.ErrNotOnboarded):
		return textResult(MsgOnboardingRequired), out, nil

	case errors.Is(err, interfaces.ErrAuthRequired):
		return errorResult(usecase.MsgGmailReconnect), out, nil

	case errors.Is(err, usecase.ErrNotAvailable):
		return errorResult("This feature is not configured on this server."), out, nil
	}

	if msg := profile.UserMessage(err); msg != profile.MsgUnknownError {
		return errorResult(msg), out, nil
	}

	_ = errutil.Handle(ctx, err, "tool failed")
	return errorResult("Error: " + err.Error()), out, nil
}
