package mcp

import (
	"time"

	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

type ProfileOutput struct {
	Name             string `json:"name"`
	Title            string `json:"title"`
	Email            string `json:"email"`
	EmailSynthesized bool   `json:"emailSynthesized"`
	ProfileURL       string `json:"profileUrl"`
	ProfilePicture   string `json:"profilePicture"`
	Source           string `json:"source"`
}

func toProfileOutput(p *model.Profile) ProfileOutput {
	return ProfileOutput{
		Name:             p.Name,
		Title:            p.Title,
		Email:            p.Email,
		EmailSynthesized: p.EmailSynthesized,
		ProfileURL:       p.ProfileURL,
		ProfilePicture:   p.ProfilePicture,
		Source:           p.Source.String(),
	}
}

func toProfileOutputs(profiles []*model.Profile) []ProfileOutput {
	out := make([]ProfileOutput, len(profiles))
	for i, p := range profiles {
		out[i] = toProfileOutput(p)
	}
	return out
}

type DetailedProfileOutput struct {
	ProfileURL     string   `json:"profileUrl"`
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Industry       string   `json:"industry"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Skills         []string `json:"skills"`
	Interests      []string `json:"interests"`
	Education      []string `json:"education"`
	Languages      []string `json:"languages"`
	Certifications []string `json:"certifications"`
	ProfileSummary string   `json:"profileSummary"`
	Source         string   `json:"source"`
	Placeholder    bool     `json:"placeholder"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toDetailedProfileOutput(d *model.DetailedProfile) *DetailedProfileOutput {
	if d == nil {
		return nil
	}
	return &DetailedProfileOutput{
		ProfileURL:     d.ProfileURL,
		Name:           d.Name,
		Title:          d.Title,
		Industry:       d.Industry,
		Company:        d.Company,
		Location:       d.Location,
		Skills:         nonNil(d.Skills),
		Interests:      nonNil(d.Interests),
		Education:      nonNil(d.Education),
		Languages:      nonNil(d.Languages),
		Certifications: nonNil(d.Certifications),
		ProfileSummary: d.ProfileSummary,
		Source:         d.Source.String(),
		Placeholder:    d.Placeholder,
	}
}

type EnrichedProfileOutput struct {
	Name          string                 `json:"name"`
	Title         string                 `json:"title"`
	Email         string                 `json:"email"`
	ProfileURL    string                 `json:"profileUrl"`
	TalkingPoints []string               `json:"talkingPoints"`
	Details       *DetailedProfileOutput `json:"details,omitempty"`
}

func toEnrichedOutputs(profiles []*usecase.EnrichedProfile) []EnrichedProfileOutput {
	out := make([]EnrichedProfileOutput, len(profiles))
	for i, ep := range profiles {
		out[i] = EnrichedProfileOutput{
			Name:          ep.Profile.Name,
			Title:         ep.Profile.Title,
			Email:         ep.Profile.Email,
			ProfileURL:    ep.Profile.ProfileURL,
			TalkingPoints: nonNil(ep.TalkingPoints),
			Details:       toDetailedProfileOutput(ep.Details),
		}
	}
	return out
}

type HistoryEntryOutput struct {
	Timestamp string `json:"timestamp"`
	Notes     string `json:"notes"`
}

type ContactOutput struct {
	ContactID       string               `json:"contactId"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	LastContact     string               `json:"lastContact,omitempty"`
	ContactHistory  []HistoryEntryOutput `json:"contactHistory"`
	ResponseScore   float64              `json:"responseScore"`
	SimilarityScore float64              `json:"similarityScore"`
	AdditionalData  map[string]any       `json:"additionalData"`
}

func toContactOutput(c *model.Contact) ContactOutput {
	out := ContactOutput{
		ContactID:       c.ID.String(),
		Name:            c.Name,
		Email:           c.Email,
		ContactHistory:  make([]HistoryEntryOutput, len(c.History)),
		ResponseScore:   c.ResponseScore,
		SimilarityScore: c.SimilarityScore,
		AdditionalData:  c.AdditionalData,
	}
	if c.LastContact != nil {
		out.LastContact = c.LastContact.UTC().Format(time.RFC3339)
	}
	for i, h := range c.History {
		out.ContactHistory[i] = HistoryEntryOutput{Timestamp: h.Timestamp.UTC().Format(time.RFC3339), Notes: h.Notes}
	}
	if out.AdditionalData == nil {
		out.AdditionalData = map[string]any{}
	}
	return out
}

func toContactOutputs(contacts []*model.Contact) []ContactOutput {
	out := make([]ContactOutput, len(contacts))
	for i, c := range contacts {
		out[i] = toContactOutput(c)
	}
	return out
}
