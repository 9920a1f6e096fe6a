package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var logInteractionForm = Form{
	Title: "Log Contact Interaction",
	Tool:  "log-contact-interaction",
	Fields: []FormField{
		textField("name", "Contact name", true),
		{Name: "email", Label: "Contact email", Type: "string", Widget: "email"},
		{Name: "notes", Label: "Notes", Type: "string", Widget: "textarea", Required: true},
	},
}

type LogInteractionInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Name of the contact"`
	Email string `json:"email,omitempty" jsonschema:"Email of the contact"`
	Notes string `json:"notes,omitempty" jsonschema:"What happened during the interaction"`
}

type LogInteractionOutput struct {
	Contact ContactOutput `json:"contact"`
}

func (x *toolset) logContactInteraction(ctx context.Context, _ *mcp.CallToolRequest, in LogInteractionInput) (*mcp.CallToolResult, LogInteractionOutput, error) {
	c, err := x.uc.Contact.LogInteraction(ctx, x.agentID, in.Name, in.Email, in.Notes)
	if err != nil {
		return fail[LogInteractionOutput](ctx, err, logInteractionForm)
	}

	out := LogInteractionOutput{Contact: toContactOutput(c)}
	return textResult(fmt.Sprintf("Logged interaction with %s", c.Name)), out, nil
}

type ContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (x *toolset) scoreContacts(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, ContactsOutput, error) {
	contacts, err := x.uc.Contact.Rescore(ctx, x.agentID)
	if err != nil {
		return fail[ContactsOutput](ctx, err, Form{})
	}

	out := ContactsOutput{Contacts: toContactOutputs(contacts)}
	return textResult(fmt.Sprintf("Scored %d contacts", len(contacts))), out, nil
}

type ChartPointOutput struct {
	Name           string         `json:"name"`
	Value          float64        `json:"value"`
	Color          string         `json:"color"`
	AdditionalData map[string]any `json:"additionalData"`
}

type VisualizationOutput struct {
	Contacts []ContactOutput    `json:"contacts"`
	Chart    []ChartPointOutput `json:"chart"`
}

func (x *toolset) getContactVisualization(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, VisualizationOutput, error) {
	v, err := x.uc.Contact.Visualization(ctx, x.agentID)
	if err != nil {
		return fail[VisualizationOutput](ctx, err, Form{})
	}

	out := VisualizationOutput{
		Contacts: toContactOutputs(v.Contacts),
		Chart:    make([]ChartPointOutput, len(v.Chart)),
	}
	for i, p := range v.Chart {
		data := p.AdditionalData
		if data == nil {
			data = map[string]any{}
		}
		out.Chart[i] = ChartPointOutput{Name: p.Name, Value: p.Value, Color: p.Color, AdditionalData: data}
	}
	return textResult(fmt.Sprintf("%d contacts ranked by score", len(v.Contacts))), out, nil
}

type OAuthStatusOutput struct {
	Connected       bool   `json:"connected"`
	Valid           bool   `json:"valid"`
	HasRefreshToken bool   `json:"hasRefreshToken"`
	ExpiresAt       string `json:"expiresAt"`
	Message         string `json:"message"`
	LoginURL        string `json:"loginUrl"`
}

func (x *toolset) getOAuthStatus(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, OAuthStatusOutput, error) {
	st, err := x.uc.OAuth.Status(ctx, x.agentID)
	if err != nil {
		return fail[OAuthStatusOutput](ctx, err, Form{})
	}

	out := OAuthStatusOutput{
		Connected:       st.Connected,
		Valid:           st.Valid,
		HasRefreshToken: st.HasRefreshToken,
	}
	if !st.ExpiresAt.IsZero() {
		out.ExpiresAt = st.ExpiresAt.UTC().Format(time.RFC3339)
	}

	switch {
	case st.Connected && st.Valid:
		out.Message = "Your Gmail account is connected."
	case st.Connected:
		out.Message = "Your Gmail authorization has expired. Please reconnect using the link."
	default:
		out.Message = "Your Gmail account is not connected. Please connect it using the link."
	}

	if !st.Valid {
		if u, err := x.uc.OAuth.LoginURL(x.agentID); err == nil {
			out.LoginURL = u
		} else {
			out.Message = "Your Gmail account is not connected and OAuth is not configured on this server."
		}
	}
	return textResult(out.Message), out, nil
}
