package model

import (
	"time"

	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

// SignalHireStatusSuccess marks a callback item with a resolved candidate
const SignalHireStatusSuccess = "success"

// SignalHireItem is one element of a SignalHire callback body. Item holds the
// identifier that was looked up, a LinkedIn profile URL in our case.
type SignalHireItem struct {
	Item      string               `json:"item"`
	Status    string               `json:"status"`
	Candidate *SignalHireCandidate `json:"candidate,omitempty"`
}

// SignalHireCandidate is the subset of the SignalHire candidate payload we use
type SignalHireCandidate struct {
	FullName   string `json:"fullName"`
	Headline   string `json:"headLine,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Experience []struct {
		Position string `json:"position"`
		Company  string `json:"company"`
		Industry string `json:"industry"`
	} `json:"experience,omitempty"`
	Locations []struct {
		Name string `json:"name"`
	} `json:"locations,omitempty"`
	Skills    []string `json:"skills,omitempty"`
	Education []struct {
		University string   `json:"university"`
		Degree     []string `json:"degree,omitempty"`
	} `json:"education,omitempty"`
	Language []struct {
		Name string `json:"name"`
	} `json:"language,omitempty"`
	Certification []struct {
		Name string `json:"name"`
	} `json:"certification,omitempty"`
	Contacts []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"contacts,omitempty"`
}

// Resolved reports whether the item carries a usable candidate
func (x *SignalHireItem) Resolved() bool {
	return x.Status == SignalHireStatusSuccess && x.Candidate != nil && x.Item != ""
}

// ToDetailedProfile converts the candidate into the common enrichment shape
func (c *SignalHireCandidate) ToDetailedProfile(profileURL string) *DetailedProfile {
	d := &DetailedProfile{
		ProfileURL:     profileURL,
		Name:           c.FullName,
		Title:          c.Headline,
		ProfileSummary: c.Summary,
		Skills:         append([]string{}, c.Skills...),
		Interests:      []string{},
		Education:      []string{},
		Languages:      []string{},
		Certifications: []string{},
		Source:         types.ProviderSignalHire,
	}

	if len(c.Experience) > 0 {
		d.Industry = c.Experience[0].Industry
		d.Company = c.Experience[0].Company
		if d.Title == "" {
			d.Title = c.Experience[0].Position
		}
	}
	if len(c.Locations) > 0 {
		d.Location = c.Locations[0].Name
	}
	for _, e := range c.Education {
		if e.University != "" {
			d.Education = append(d.Education, e.University)
		}
	}
	for _, l := range c.Language {
		if l.Name != "" {
			d.Languages = append(d.Languages, l.Name)
		}
	}
	for _, cert := range c.Certification {
		if cert.Name != "" {
			d.Certifications = append(d.Certifications, cert.Name)
		}
	}

	return d
}

// Emails returns the email contacts of the candidate
func (c *SignalHireCandidate) Emails() []string {
	var out []string
	for _, ct := range c.Contacts {
		if ct.Type == "email" && ct.Value != "" {
			out = append(out, ct.Value)
		}
	}
	return out
}

// CallbackRecord is a received SignalHire callback, kept for status queries
type CallbackRecord struct {
	RequestID string
	Items     []SignalHireItem
	Received  bool
	Timestamp time.Time
}
