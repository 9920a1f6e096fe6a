package model

import (
	"net/mail"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ParseEmailAddress returns the bare address of s. Display names are
// dropped and anything net/mail rejects, including CR or LF, is an
// ErrValidation.
func ParseEmailAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "\r\n") {
		return "", goerr.Wrap(ErrValidation, "email address contains a line break")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return "", goerr.Wrap(ErrValidation, "invalid email address", goerr.V("error", err.Error()))
	}
	return addr.Address, nil
}

// EmailMessage is a single HTML email to send
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}

// Recipient is an outreach target
type Recipient struct {
	Name          string
	Title         string
	Email         string
	ProfileURL    string
	TalkingPoints []string
}

// Invitation holds the links and text rendered into an outreach email
type Invitation struct {
	SenderName      string
	MeetingLink     string
	SchedulingLink  string
	ResumeURL       string
	PersonalMessage string
}

// Delivery is the outcome of one outreach email
type Delivery struct {
	Recipient Recipient
	Sent      bool
	MessageID string
	Error     string
}

// OutreachResult summarizes a batch. SentCount + FailedCount always equals the
// number of recipients. AuthFailed means the batch was aborted because the
// Gmail credential is unusable and the user has to reconnect.
type OutreachResult struct {
	Success     bool
	SentCount   int
	FailedCount int
	AuthFailed  bool
	Deliveries  []Delivery
}
