package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

var sendEmailForm = Form{
	Title: "Send Email",
	Tool:  "send-email",
	Fields: []FormField{
		{Name: "to", Label: "Recipient email", Type: "string", Widget: "email", Required: true},
		textField("subject", "Subject", true),
		{Name: "body", Label: "Body (HTML)", Type: "string", Widget: "textarea", Required: true},
	},
}

var scheduleForm = Form{
	Title: "Schedule a Coffee Chat",
	Tool:  "schedule-coffee-chat",
	Fields: []FormField{
		urlField("meetingLink", "Meeting link"),
		{Name: "schedulingLink", Label: "Scheduling link", Type: "string", Widget: "url"},
		urlField("resumeUrl", "Resume URL"),
		{Name: "preferredChatPartner", Label: "Who would you like to chat with?", Type: "string", Widget: "textarea", Required: true},
		{Name: "personalMessage", Label: "Personal message", Type: "string", Widget: "textarea"},
	},
}

var personalizedForm = Form{
	Title: "Personalized Outreach",
	Tool:  "personalized-outreach",
	Fields: []FormField{
		textField("fullName", "Your full name", true),
		urlField("meetingLink", "Meeting link"),
		urlField("calendarLink", "Calendar link"),
		urlField("resumeUrl", "Resume URL"),
		textField("searchQuery", "Who should we reach out to?", true),
		{Name: "maxContacts", Label: "Maximum contacts", Type: "number", Widget: "number"},
	},
}

type SendEmailInput struct {
	To      string `json:"to,omitempty" jsonschema:"Recipient email address"`
	Subject string `json:"subject,omitempty" jsonschema:"Email subject"`
	Body    string `json:"body,omitempty" jsonschema:"HTML body of the email"`
}

type SendEmailOutput struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

func (x *toolset) sendEmail(ctx context.Context, _ *mcp.CallToolRequest, in SendEmailInput) (*mcp.CallToolResult, SendEmailOutput, error) {
	id, err := x.uc.Outreach.SendEmail(ctx, x.agentID, in.To, in.Subject, in.Body)
	if err != nil {
		return fail[SendEmailOutput](ctx, err, sendEmailForm)
	}

	out := SendEmailOutput{Success: true, MessageID: id}
	return textResult("Email sent to " + in.To), out, nil
}

type ScheduleCoffeeChatInput struct {
	MeetingLink          string `json:"meetingLink,omitempty" jsonschema:"Video meeting link for the chat"`
	SchedulingLink       string `json:"schedulingLink,omitempty" jsonschema:"Link where the invitee can pick a time"`
	ResumeURL            string `json:"resumeUrl,omitempty" jsonschema:"URL of the user's resume"`
	PreferredChatPartner string `json:"preferredChatPartner,omitempty" jsonschema:"Description of the people to invite"`
	PersonalMessage      string `json:"personalMessage,omitempty" jsonschema:"Optional message included in every invitation"`
}

type ScheduleCoffeeChatOutput struct {
	Message         string          `json:"message"`
	InvitedProfiles []ProfileOutput `json:"invitedProfiles"`
	SentCount       int             `json:"sentCount"`
	FailedCount     int             `json:"failedCount"`
}

func (x *toolset) scheduleCoffeeChat(ctx context.Context, _ *mcp.CallToolRequest, in ScheduleCoffeeChatInput) (*mcp.CallToolResult, ScheduleCoffeeChatOutput, error) {
	res, err := x.uc.Outreach.ScheduleCoffeeChat(ctx, x.agentID, usecase.ScheduleInput{
		MeetingLink:          in.MeetingLink,
		SchedulingLink:       in.SchedulingLink,
		ResumeURL:            in.ResumeURL,
		PreferredChatPartner: in.PreferredChatPartner,
		PersonalMessage:      in.PersonalMessage,
	})
	if err != nil {
		return fail[ScheduleCoffeeChatOutput](ctx, err, scheduleForm)
	}

	out := ScheduleCoffeeChatOutput{
		Message:         res.Message,
		InvitedProfiles: toProfileOutputs(res.InvitedProfiles),
		SentCount:       res.Outreach.SentCount,
		FailedCount:     res.Outreach.FailedCount,
	}
	if res.Outreach.AuthFailed {
		return errorResult(out.Message), out, nil
	}
	return textResult(out.Message), out, nil
}

type PersonalizedOutreachInput struct {
	FullName     string `json:"fullName,omitempty" jsonschema:"Sender's full name"`
	MeetingLink  string `json:"meetingLink,omitempty" jsonschema:"Video meeting link"`
	CalendarLink string `json:"calendarLink,omitempty" jsonschema:"Calendar booking link"`
	ResumeURL    string `json:"resumeUrl,omitempty" jsonschema:"URL of the sender's resume"`
	SearchQuery  string `json:"searchQuery,omitempty" jsonschema:"Description of the people to reach out to"`
	MaxContacts  int    `json:"maxContacts,omitempty" jsonschema:"Maximum number of invitations, defaults to 3"`
}

type PersonalizedOutreachOutput struct {
	Message     string                  `json:"message"`
	SentCount   int                     `json:"sentCount"`
	FailedCount int                     `json:"failedCount"`
	Profiles    []EnrichedProfileOutput `json:"profiles"`
}

func (x *toolset) personalizedOutreach(ctx context.Context, _ *mcp.CallToolRequest, in PersonalizedOutreachInput) (*mcp.CallToolResult, PersonalizedOutreachOutput, error) {
	res, err := x.uc.Outreach.PersonalizedOutreach(ctx, x.agentID, usecase.PersonalizedInput{
		FullName:     in.FullName,
		MeetingLink:  in.MeetingLink,
		CalendarLink: in.CalendarLink,
		ResumeURL:    in.ResumeURL,
		SearchQuery:  in.SearchQuery,
		MaxContacts:  in.MaxContacts,
	})
	if err != nil {
		return fail[PersonalizedOutreachOutput](ctx, err, personalizedForm)
	}

	out := PersonalizedOutreachOutput{
		Message:     res.Message,
		SentCount:   res.Outreach.SentCount,
		FailedCount: res.Outreach.FailedCount,
		Profiles:    toEnrichedOutputs(res.Profiles),
	}
	if res.Outreach.AuthFailed {
		return errorResult(out.Message), out, nil
	}
	return textResult(out.Message), out, nil
}
