package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

const (
	DefaultOutreachSubject = "Coffee Chat Invitation"
	ScheduleSearchLimit    = 3
	DefaultMaxContacts     = 3

	MsgGmailReconnect   = "Gmail authorization is required. Please reconnect your Gmail account and try again."
	invitationNotes     = "Sent coffee chat invitation"
	msgMissingRecipient = "recipient has no email address"
	msgInvalidRecipient = "recipient email address is invalid"
	msgBatchAborted     = "not sent: Gmail authorization failed earlier in this batch"
)

const defaultInvitationTemplate = `<html>
  <body>
    <p>Hello {{.Name}},</p>
    <p>I would like to invite you to a coffee chat to discuss potential opportunities.</p>
    {{- if .PersonalMessage}}
    <p>{{.PersonalMessage}}</p>
    {{- end}}
    {{- if .TalkingPoints}}
    <p>I would love to hear about:</p>
    <ul>
      {{- range .TalkingPoints}}
      <li>{{.}}</li>
      {{- end}}
    </ul>
    {{- end}}
    <p><strong>Meeting Link:</strong> <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
    {{- if .SchedulingLink}}
    <p>Pick a time that works for you: <a href="{{.SchedulingLink}}">{{.SchedulingLink}}</a></p>
    {{- end}}
    <p>I've attached my resume for your reference: <a href="{{.ResumeURL}}">My Resume</a></p>
    <p>Looking forward to our conversation!</p>
    <p>Best regards,</p>
    {{- if .SenderName}}
    <p>{{.SenderName}}</p>
    {{- end}}
  </body>
</html>
`

// OutreachConfig controls how invitations are rendered
type OutreachConfig struct {
	SenderName string
	Subject    string
	Template   *template.Template
}

var defaultTemplate = template.Must(template.New("invitation").Parse(defaultInvitationTemplate))

func DefaultOutreachConfig() *OutreachConfig {
	return &OutreachConfig{
		Subject:  DefaultOutreachSubject,
		Template: defaultTemplate,
	}
}

// NewOutreachConfig parses tmpl as an html/template. Empty values fall back
// to the defaults.
func NewOutreachConfig(senderName, subject, tmpl string) (*OutreachConfig, error) {
	cfg := DefaultOutreachConfig()
	cfg.SenderName = strings.TrimSpace(senderName)
	if s := strings.TrimSpace(subject); s != "" {
		cfg.Subject = s
	}
	if strings.TrimSpace(tmpl) != "" {
		t, err := template.New("invitation").Parse(tmpl)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse invitation template")
		}
		cfg.Template = t
	}
	return cfg, nil
}

type invitationData struct {
	Name            string
	MeetingLink     string
	SchedulingLink  string
	ResumeURL       string
	PersonalMessage string
	TalkingPoints   []string
	SenderName      string
}

func (c *OutreachConfig) render(inv model.Invitation, r model.Recipient) (string, error) {
	var buf bytes.Buffer
	err := c.Template.Execute(&buf, invitationData{
		Name:            r.Name,
		MeetingLink:     inv.MeetingLink,
		SchedulingLink:  inv.SchedulingLink,
		ResumeURL:       inv.ResumeURL,
		PersonalMessage: inv.PersonalMessage,
		TalkingPoints:   r.TalkingPoints,
		SenderName:      inv.SenderName,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render invitation", goerr.V("recipient", r.Name))
	}
	return buf.String(), nil
}

type OutreachUseCase struct {
	repo     interfaces.Repository
	contacts *ContactUseCase
	profiles *ProfileUseCase
	mailer   interfaces.Mailer
	notifier interfaces.Notifier
	config   *OutreachConfig
}

// SendEmail sends one message and returns the provider message ID
func (uc *OutreachUseCase) SendEmail(ctx context.Context, id model.AgentID, to, subject, body string) (string, error) {
	if uc.mailer == nil {
		return "", goerr.Wrap(ErrNotAvailable, "mailer is not configured")
	}

	v := &model.ValidationError{}
	addr, err := model.ParseEmailAddress(to)
	switch {
	case strings.TrimSpace(to) == "":
		v.Add("to", "Recipient email is required")
	case err != nil:
		v.Add("to", "Recipient email is invalid")
	}
	if strings.TrimSpace(subject) == "" {
		v.Add("subject", "Subject is required")
	}
	if strings.TrimSpace(body) == "" {
		v.Add("body", "Email body is required")
	}
	if err := v.OrNil(); err != nil {
		return "", err
	}

	msgID, err := uc.mailer.Send(ctx, id, &model.EmailMessage{
		To:       addr,
		Subject:  subject,
		HTMLBody: body,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to send email", goerr.V(model.AgentIDKey, id))
	}
	return msgID, nil
}

// SendInvitations sends one invitation per recipient. An authorization
// failure stops the batch and counts every remaining recipient as failed.
func (uc *OutreachUseCase) SendInvitations(ctx context.Context, id model.AgentID, inv model.Invitation, recipients []model.Recipient) (*model.OutreachResult, error) {
	if uc.mailer == nil {
		return nil, goerr.Wrap(ErrNotAvailable, "mailer is not configured")
	}
	if inv.SenderName == "" {
		inv.SenderName = uc.senderName(ctx, id)
	}

	logger := logging.From(ctx).With("agentID", id)
	result := &model.OutreachResult{Deliveries: make([]model.Delivery, 0, len(recipients))}
	fail := func(r model.Recipient, msg string) {
		result.FailedCount++
		result.Deliveries = append(result.Deliveries, model.Delivery{Recipient: r, Error: msg})
	}

	for _, r := range recipients {
		if result.AuthFailed {
			fail(r, msgBatchAborted)
			continue
		}
		if strings.TrimSpace(r.Email) == "" {
			fail(r, msgMissingRecipient)
			continue
		}
		addr, err := model.ParseEmailAddress(r.Email)
		if err != nil {
			logger.Warn("invitation not sent", "recipient", r.Email, "error", err)
			fail(r, msgInvalidRecipient)
			continue
		}

		body, err := uc.config.render(inv, r)
		if err != nil {
			logger.Warn("invitation not rendered", "recipient", r.Email, "error", err)
			fail(r, err.Error())
			continue
		}

		msgID, err := uc.mailer.Send(ctx, id, &model.EmailMessage{
			To:       addr,
			Subject:  uc.config.Subject,
			HTMLBody: body,
		})
		if err != nil {
			if errors.Is(err, interfaces.ErrAuthRequired) {
				logger.Warn("gmail authorization failed, aborting batch", "error", err)
				result.AuthFailed = true
			} else {
				logger.Warn("invitation not sent", "recipient", r.Email, "error", err)
			}
			fail(r, err.Error())
			continue
		}

		result.SentCount++
		result.Deliveries = append(result.Deliveries, model.Delivery{Recipient: r, Sent: true, MessageID: msgID})

		if _, err := uc.contacts.Upsert(ctx, id, model.ContactInput{
			Name:  r.Name,
			Email: r.Email,
			Notes: invitationNotes,
		}, true); err != nil {
			logger.Warn("failed to record invitation", "recipient", r.Email, "error", err)
		}
	}
	result.Success = result.SentCount > 0

	logger.Info("invitations sent",
		"sent", result.SentCount,
		"failed", result.FailedCount,
		"authFailed", result.AuthFailed,
	)

	if uc.notifier != nil {
		if err := uc.notifier.NotifyOutreach(ctx, id, result); err != nil {
			logger.Warn("failed to notify outreach", "error", err)
		}
	}

	return result, nil
}

// senderName falls back to the configured name, then to the user's own name
func (uc *OutreachUseCase) senderName(ctx context.Context, id model.AgentID) string {
	if uc.config.SenderName != "" {
		return uc.config.SenderName
	}
	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		return ""
	}
	return user.Name
}

type ScheduleInput struct {
	MeetingLink          string
	SchedulingLink       string
	ResumeURL            string
	PreferredChatPartner string
	PersonalMessage      string
}

func (x ScheduleInput) Validate() error {
	v := &model.ValidationError{}
	if !model.IsHTTPURL(x.MeetingLink) {
		v.Add("meetingLink", "Please provide a valid meeting link")
	}
	if x.SchedulingLink != "" && !model.IsHTTPURL(x.SchedulingLink) {
		v.Add("schedulingLink", "Please provide a valid scheduling link")
	}
	if !model.IsHTTPURL(x.ResumeURL) {
		v.Add("resumeUrl", "Please provide a valid URL for your resume")
	}
	if strings.TrimSpace(x.PreferredChatPartner) == "" {
		v.Add("preferredChatPartner", "Please describe who you would like to chat with")
	}
	return v.OrNil()
}

type ScheduleResult struct {
	Message         string
	InvitedProfiles []*model.Profile
	Outreach        *model.OutreachResult
}

// ScheduleCoffeeChat finds chat partners and invites them
func (uc *OutreachUseCase) ScheduleCoffeeChat(ctx context.Context, id model.AgentID, in ScheduleInput) (*ScheduleResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	found, err := uc.profiles.Search(ctx, id, in.PreferredChatPartner, ScheduleSearchLimit, types.SearchPurposeGeneral)
	if err != nil {
		return nil, err
	}
	if len(found.Profiles) == 0 {
		return &ScheduleResult{
			Message:         MsgNoProfiles,
			InvitedProfiles: []*model.Profile{},
			Outreach:        &model.OutreachResult{Deliveries: []model.Delivery{}},
		}, nil
	}

	recipients := make([]model.Recipient, len(found.Profiles))
	for i, p := range found.Profiles {
		recipients[i] = model.Recipient{Name: p.Name, Title: p.Title, Email: p.Email, ProfileURL: p.ProfileURL}
	}

	res, err := uc.SendInvitations(ctx, id, model.Invitation{
		MeetingLink:     in.MeetingLink,
		SchedulingLink:  in.SchedulingLink,
		ResumeURL:       in.ResumeURL,
		PersonalMessage: in.PersonalMessage,
	}, recipients)
	if err != nil {
		return nil, err
	}

	msg := "Coffee chat scheduled successfully"
	if res.Success {
		msg += " and invitations sent"
	}
	msg = fmt.Sprintf("%s. Sent: %d, Failed: %d", msg, res.SentCount, res.FailedCount)
	if res.AuthFailed {
		msg += ". " + MsgGmailReconnect
	}

	return &ScheduleResult{
		Message:         msg,
		InvitedProfiles: found.Profiles,
		Outreach:        res,
	}, nil
}

type PersonalizedInput struct {
	FullName     string
	MeetingLink  string
	CalendarLink string
	ResumeURL    string
	SearchQuery  string
	MaxContacts  int
}

func (x PersonalizedInput) Validate() error {
	v := &model.ValidationError{}
	if strings.TrimSpace(x.FullName) == "" {
		v.Add("fullName", "Your full name is required")
	}
	if !model.IsHTTPURL(x.MeetingLink) {
		v.Add("meetingLink", "Please provide a valid meeting link")
	}
	if !model.IsHTTPURL(x.CalendarLink) {
		v.Add("calendarLink", "Please provide a valid calendar link")
	}
	if !model.IsHTTPURL(x.ResumeURL) {
		v.Add("resumeUrl", "Please provide a valid URL for your resume")
	}
	if strings.TrimSpace(x.SearchQuery) == "" {
		v.Add("searchQuery", "Search query is required")
	}
	return v.OrNil()
}

type PersonalizedResult struct {
	Message  string
	Profiles []*EnrichedProfile
	Outreach *model.OutreachResult
}

// PersonalizedOutreach searches, enriches and sends invitations that carry
// each recipient's talking points
func (uc *OutreachUseCase) PersonalizedOutreach(ctx context.Context, id model.AgentID, in PersonalizedInput) (*PersonalizedResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.MaxContacts <= 0 {
		in.MaxContacts = DefaultMaxContacts
	}

	enriched, err := uc.profiles.Enrich(ctx, id, in.SearchQuery, in.MaxContacts, types.EnrichmentPurposeOutreach)
	if err != nil {
		return nil, err
	}
	if len(enriched.Profiles) == 0 {
		return &PersonalizedResult{
			Message:  MsgNoProfiles,
			Profiles: []*EnrichedProfile{},
			Outreach: &model.OutreachResult{Deliveries: []model.Delivery{}},
		}, nil
	}

	recipients := make([]model.Recipient, len(enriched.Profiles))
	for i, ep := range enriched.Profiles {
		points := ep.TalkingPoints
		if len(points) == 0 {
			points = []string{"Role: " + ep.Profile.Title}
			ep.TalkingPoints = points
		}
		recipients[i] = model.Recipient{
			Name:          ep.Profile.Name,
			Title:         ep.Profile.Title,
			Email:         ep.Profile.Email,
			ProfileURL:    ep.Profile.ProfileURL,
			TalkingPoints: points,
		}
	}

	res, err := uc.SendInvitations(ctx, id, model.Invitation{
		SenderName:     strings.TrimSpace(in.FullName),
		MeetingLink:    in.MeetingLink,
		SchedulingLink: in.CalendarLink,
		ResumeURL:      in.ResumeURL,
	}, recipients)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Personalized outreach complete. Sent: %d, Failed: %d", res.SentCount, res.FailedCount)
	if res.AuthFailed {
		msg += ". " + MsgGmailReconnect
	}

	return &PersonalizedResult{Message: msg, Profiles: enriched.Profiles, Outreach: res}, nil
}
