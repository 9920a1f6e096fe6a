package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/repository/memory"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

var testInvitation = model.Invitation{
	MeetingLink: "https://meet.example.com/abc",
	ResumeURL:   "https://example.com/resume.pdf",
}

func TestOutreachUseCase_SendInvitations(t *testing.T) {
	ctx := context.Background()

	t.Run("counts every recipient", func(t *testing.T) {
		mailer := &mockMailer{errs: map[string]error{"grace@example.com": goerr.New("bounced")}}
		notifier := &mockNotifier{}
		uc := usecase.New(memory.New(), usecase.WithMailer(mailer), usecase.WithNotifier(notifier))
		onboard(t, uc, "agent-1")

		recipients := []model.Recipient{
			{Name: "Ada", Email: "ada@example.com"},
			{Name: "Grace", Email: "grace@example.com"},
			{Name: "Nobody"},
			{Name: "Alan", Email: "alan@example.com"},
		}
		res, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, recipients)
		gt.NoError(t, err).Required()

		gt.Value(t, res.SentCount).Equal(2)
		gt.Value(t, res.FailedCount).Equal(2)
		gt.Value(t, res.SentCount+res.FailedCount).Equal(len(recipients))
		gt.Bool(t, res.Success).True()
		gt.Bool(t, res.AuthFailed).False()
		gt.Array(t, res.Deliveries).Length(4)

		gt.Array(t, mailer.sent).Length(2).Required()
		gt.Value(t, mailer.sent[0].Subject).Equal(usecase.DefaultOutreachSubject)
		gt.String(t, mailer.sent[0].HTMLBody).Contains("Hello Ada,")
		gt.String(t, mailer.sent[0].HTMLBody).Contains(testInvitation.MeetingLink)
		// sender falls back to the user's name
		gt.String(t, mailer.sent[0].HTMLBody).Contains("Test User")

		gt.Array(t, notifier.results).Length(1)
	})

	t.Run("records an interaction per sent invitation", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithMailer(&mockMailer{}))
		onboard(t, uc, "agent-1")

		_, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, []model.Recipient{
			{Name: "Ada", Email: "ada@example.com"},
		})
		gt.NoError(t, err).Required()

		contacts, err := uc.Contact.List(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Array(t, contacts).Length(1).Required()
		gt.Array(t, contacts[0].History).Length(1)
		gt.Value(t, contacts[0].LastContact).NotNil()
	})

	t.Run("authorization failure aborts the batch", func(t *testing.T) {
		mailer := &mockMailer{errs: map[string]error{
			"grace@example.com": goerr.Wrap(interfaces.ErrAuthRequired, "refresh failed"),
		}}
		uc := usecase.New(memory.New(), usecase.WithMailer(mailer))
		onboard(t, uc, "agent-1")

		res, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, []model.Recipient{
			{Name: "Ada", Email: "ada@example.com"},
			{Name: "Grace", Email: "grace@example.com"},
			{Name: "Alan", Email: "alan@example.com"},
		})
		gt.NoError(t, err).Required()

		gt.Bool(t, res.AuthFailed).True()
		gt.Value(t, res.SentCount).Equal(1)
		gt.Value(t, res.FailedCount).Equal(2)
		gt.Array(t, mailer.sent).Length(1)
	})

	t.Run("nothing sent is not a success", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithMailer(&mockMailer{}))
		onboard(t, uc, "agent-1")

		res, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, []model.Recipient{{Name: "Nobody"}})
		gt.NoError(t, err).Required()
		gt.Bool(t, res.Success).False()
		gt.Value(t, res.FailedCount).Equal(1)
	})

	t.Run("malformed address is counted as failed", func(t *testing.T) {
		mailer := &mockMailer{}
		uc := usecase.New(memory.New(), usecase.WithMailer(mailer))
		onboard(t, uc, "agent-1")

		res, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, []model.Recipient{
			{Name: "Ada", Email: "ada@example.com\nBcc: other@example.com"},
			{Name: "Alan", Email: "alan@example.com"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, res.SentCount).Equal(1)
		gt.Value(t, res.FailedCount).Equal(1)
		gt.A(t, mailer.sent).Length(1).Required()
		gt.Value(t, mailer.sent[0].To).Equal("alan@example.com")
	})

	t.Run("mailer not configured", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Outreach.SendInvitations(ctx, "agent-1", testInvitation, nil)
		gt.Bool(t, errors.Is(err, usecase.ErrNotAvailable)).True()
	})
}

func TestOutreachUseCase_SendEmail(t *testing.T) {
	ctx := context.Background()
	mailer := &mockMailer{}
	uc := usecase.New(memory.New(), usecase.WithMailer(mailer))

	id, err := uc.Outreach.SendEmail(ctx, "agent-1", " ada@example.com ", "Hi", "<p>Hello</p>")
	gt.NoError(t, err).Required()
	gt.Value(t, id).Equal("msg-ada")
	gt.Value(t, mailer.sent[0].To).Equal("ada@example.com")

	_, err = uc.Outreach.SendEmail(ctx, "agent-1", "", "", "")
	var verr *model.ValidationError
	gt.Bool(t, errors.As(err, &verr)).True()
	gt.Array(t, verr.Fields).Length(3)

	before := len(mailer.sent)
	_, err = uc.Outreach.SendEmail(ctx, "agent-1", "ada@example.com\r\nBcc: other@example.com", "Hi", "<p>Hello</p>")
	gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	gt.A(t, mailer.sent).Length(before)

	_, err = uc.Outreach.SendEmail(ctx, "agent-1", "Ada <ada@example.com>", "Hi", "<p>Hello</p>")
	gt.NoError(t, err).Required()
	gt.Value(t, mailer.sent[len(mailer.sent)-1].To).Equal("ada@example.com")
}

func TestOutreachUseCase_ScheduleCoffeeChat(t *testing.T) {
	ctx := context.Background()
	in := usecase.ScheduleInput{
		MeetingLink:          "https://meet.example.com/abc",
		SchedulingLink:       "https://cal.example.com/me",
		ResumeURL:            "https://example.com/resume.pdf",
		PreferredChatPartner: "platform engineers",
		PersonalMessage:      "Loved your talk on compilers.",
	}

	t.Run("invites the top three matches", func(t *testing.T) {
		profiles := append(testProfiles(), &model.Profile{Name: "Extra", Email: "extra@example.com"})
		searcher := &mockSearcher{profiles: profiles}
		mailer := &mockMailer{}
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(searcher), usecase.WithMailer(mailer))
		onboard(t, uc, "agent-1")

		res, err := uc.Outreach.ScheduleCoffeeChat(ctx, "agent-1", in)
		gt.NoError(t, err).Required()

		gt.Value(t, searcher.limits[0]).Equal(usecase.ScheduleSearchLimit)
		gt.Array(t, res.InvitedProfiles).Length(3)
		gt.Value(t, res.Outreach.SentCount).Equal(3)
		gt.String(t, res.Message).Contains("invitations sent")
		gt.String(t, mailer.sent[0].HTMLBody).Contains("Loved your talk on compilers.")
		gt.String(t, mailer.sent[0].HTMLBody).Contains(in.SchedulingLink)
	})

	t.Run("no profiles found", func(t *testing.T) {
		mailer := &mockMailer{}
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{}), usecase.WithMailer(mailer))
		onboard(t, uc, "agent-1")

		res, err := uc.Outreach.ScheduleCoffeeChat(ctx, "agent-1", in)
		gt.NoError(t, err).Required()
		gt.Value(t, res.Message).Equal(usecase.MsgNoProfiles)
		gt.Array(t, mailer.sent).Length(0)
	})

	t.Run("validates links", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithProfileSearcher(&mockSearcher{}), usecase.WithMailer(&mockMailer{}))
		bad := in
		bad.MeetingLink = "meet"
		_, err := uc.Outreach.ScheduleCoffeeChat(ctx, "agent-1", bad)
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})
}

func TestOutreachUseCase_PersonalizedOutreach(t *testing.T) {
	ctx := context.Background()
	mailer := &mockMailer{}
	detailer := &mockDetailer{detail: func(url string) (*model.DetailedProfile, error) {
		if url == "https://linkedin.com/in/ada" {
			return detailFor(url)
		}
		return nil, goerr.New("no detail")
	}}
	uc := usecase.New(memory.New(),
		usecase.WithProfileSearcher(&mockSearcher{profiles: testProfiles()}),
		usecase.WithProfileDetailer(detailer),
		usecase.WithMailer(mailer),
	)
	onboard(t, uc, "agent-1")

	res, err := uc.Outreach.PersonalizedOutreach(ctx, "agent-1", usecase.PersonalizedInput{
		FullName:     "Charles Babbage",
		MeetingLink:  "https://meet.example.com/abc",
		CalendarLink: "https://cal.example.com/me",
		ResumeURL:    "https://example.com/resume.pdf",
		SearchQuery:  "engineers",
		MaxContacts:  2,
	})
	gt.NoError(t, err).Required()

	gt.Value(t, res.Message).Equal("Personalized outreach complete. Sent: 2, Failed: 0")
	gt.Array(t, res.Profiles).Length(2).Required()
	gt.Value(t, res.Profiles[1].TalkingPoints).Equal([]string{"Role: Admiral"})

	gt.Array(t, mailer.sent).Length(2).Required()
	gt.String(t, mailer.sent[0].HTMLBody).Contains("Works at Analytical Engines")
	gt.String(t, mailer.sent[0].HTMLBody).Contains("Charles Babbage")
}

func TestOutreachConfig(t *testing.T) {
	t.Run("custom template", func(t *testing.T) {
		cfg, err := usecase.NewOutreachConfig("Me", "Let's talk", "<p>Hi {{.Name}} from {{.SenderName}}</p>")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Subject).Equal("Let's talk")

		body, err := cfg.Render(model.Invitation{SenderName: "Me"}, model.Recipient{Name: "<Ada>"})
		gt.NoError(t, err).Required()
		gt.Value(t, body).Equal("<p>Hi &lt;Ada&gt; from Me</p>")
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := usecase.NewOutreachConfig("", "", "")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Subject).Equal(usecase.DefaultOutreachSubject)
		gt.Value(t, cfg.Template).NotNil()
	})

	t.Run("broken template", func(t *testing.T) {
		_, err := usecase.NewOutreachConfig("", "", "{{.Name")
		gt.Error(t, err)
	})
}
