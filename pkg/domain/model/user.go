package model

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// AgentID identifies the calling agent and doubles as the user ID
type AgentID string

func (id AgentID) String() string {
	return string(id)
}

// Validate checks that the ID can be used as a document key
func (id AgentID) Validate() error {
	s := string(id)
	if strings.TrimSpace(s) == "" {
		return ErrInvalidAgentID
	}
	if strings.Contains(s, "/") || s == "." || s == ".." {
		return ErrInvalidAgentID
	}
	return nil
}

const (
	// MinAge is the minimum age accepted at onboarding
	MinAge = 18
	// MinGoalsLength is the minimum number of characters required for goals
	MinGoalsLength = 50
)

// User is the operator an agent acts for. Contacts are embedded in the same
// persisted document.
type User struct {
	ID        AgentID
	Name      string
	Age       int
	ResumeURL string
	Goals     string
	Onboarded bool
	Contacts  []*Contact
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Copy returns a deep copy of u
func (u *User) Copy() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Contacts = CopyContacts(u.Contacts)
	return &out
}

// OnboardingInput is the profile collected when a user first signs up
type OnboardingInput struct {
	Name      string
	Age       int
	ResumeURL string
	Goals     string
}

// Validate reports every invalid field at once so the caller can render a form
func (x OnboardingInput) Validate() error {
	v := &ValidationError{}
	validateName(v, x.Name)
	validateAge(v, x.Age)
	validateResumeURL(v, x.ResumeURL)
	validateGoals(v, x.Goals)
	return v.OrNil()
}

// ProfileUpdate changes a subset of profile fields; nil fields are left alone
type ProfileUpdate struct {
	Name      *string
	Age       *int
	ResumeURL *string
	Goals     *string
}

// IsEmpty reports whether no field is set
func (x ProfileUpdate) IsEmpty() bool {
	return x.Name == nil && x.Age == nil && x.ResumeURL == nil && x.Goals == nil
}

// Validate applies onboarding rules to each provided field
func (x ProfileUpdate) Validate() error {
	v := &ValidationError{}
	if x.Name != nil {
		validateName(v, *x.Name)
	}
	if x.Age != nil {
		validateAge(v, *x.Age)
	}
	if x.ResumeURL != nil {
		validateResumeURL(v, *x.ResumeURL)
	}
	if x.Goals != nil {
		validateGoals(v, *x.Goals)
	}
	return v.OrNil()
}

// Apply writes the provided fields into u
func (x ProfileUpdate) Apply(u *User) {
	if x.Name != nil {
		u.Name = strings.TrimSpace(*x.Name)
	}
	if x.Age != nil {
		u.Age = *x.Age
	}
	if x.ResumeURL != nil {
		u.ResumeURL = strings.TrimSpace(*x.ResumeURL)
	}
	if x.Goals != nil {
		u.Goals = strings.TrimSpace(*x.Goals)
	}
}

func validateName(v *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		v.Add("name", "Name is required")
	}
}

func validateAge(v *ValidationError, age int) {
	if age < MinAge {
		v.Add("age", "You must be at least 18 years old")
	}
}

func validateResumeURL(v *ValidationError, raw string) {
	if !IsHTTPURL(raw) {
		v.Add("resumeUrl", "Please provide a valid URL for your resume")
	}
}

func validateGoals(v *ValidationError, goals string) {
	if utf8.RuneCountInString(strings.TrimSpace(goals)) < MinGoalsLength {
		v.Add("goals", "Please provide more detail about your goals (at least 50 characters)")
	}
}

// IsHTTPURL reports whether raw is an absolute http or https URL
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
