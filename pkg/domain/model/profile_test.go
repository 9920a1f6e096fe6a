package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

func TestSynthesizeEmail(t *testing.T) {
	gt.Value(t, model.SynthesizeEmail("Ada Lovelace", "Analytical Engines, Inc.")).Equal("adalovelace@analyticalenginesinc.com")
	gt.Value(t, model.SynthesizeEmail("Ada Lovelace", "")).Equal("adalovelace@example.com")
}

func TestProfile_Normalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		p := &model.Profile{}
		p.Normalize()

		gt.Value(t, p.Name).Equal(model.DefaultProfileName)
		gt.Value(t, p.Title).Equal(model.DefaultProfileTitle)
		gt.Value(t, p.ProfilePicture).Equal(model.DefaultProfilePicture)
		gt.Value(t, p.ProfileURL).Equal("https://linkedin.com/in/unknownuser")
		gt.Bool(t, p.EmailSynthesized).True()
	})

	t.Run("title falls back to latest experience", func(t *testing.T) {
		p := &model.Profile{
			Name:       "Grace Hopper",
			Experience: []model.Experience{{Title: "Rear Admiral", Company: "US Navy"}},
		}
		p.Normalize()

		gt.Value(t, p.Title).Equal("Rear Admiral")
		gt.Value(t, p.Email).Equal("gracehopper@usnavy.com")
	})

	t.Run("keeps provider email", func(t *testing.T) {
		p := &model.Profile{Name: "Grace", Email: "grace@navy.mil"}
		p.Normalize()
		gt.Value(t, p.Email).Equal("grace@navy.mil")
		gt.Bool(t, p.EmailSynthesized).False()
	})
}

func TestProfile_ContactInput(t *testing.T) {
	p := &model.Profile{
		Name:           "Grace Hopper",
		Title:          "Admiral",
		Email:          "grace@navy.mil",
		ProfileURL:     "https://linkedin.com/in/grace",
		ProfilePicture: "https://example.com/g.png",
		Experience:     []model.Experience{{Title: "Admiral", Company: "US Navy"}},
		Source:         types.ProviderLinkd,
	}
	in := p.ContactInput()

	gt.Value(t, in.Name).Equal("Grace Hopper")
	gt.Value(t, in.Email).Equal("grace@navy.mil")
	gt.Value(t, in.AdditionalData["title"]).Equal("Admiral")
	gt.Value(t, in.AdditionalData["profileUrl"]).Equal("https://linkedin.com/in/grace")
	gt.Value(t, in.AdditionalData["company"]).Equal("US Navy")
	gt.Value(t, in.AdditionalData["source"]).Equal("linkd")
}

func TestDetailedProfile_TalkingPoints(t *testing.T) {
	d := &model.DetailedProfile{
		Industry:  "Software",
		Company:   "Acme",
		Skills:    []string{"Go", "Distributed Systems", "SQL", "Kubernetes"},
		Education: []string{"MIT", "Stanford"},
		Location:  "Boston",
	}

	gt.Value(t, d.TalkingPoints()).Equal([]string{
		"Experience in the Software industry",
		"Works at Acme",
		"Expertise in Go, Distributed Systems, SQL",
		"Educational background at MIT",
		"Based in Boston",
	})

	gt.Array(t, (&model.DetailedProfile{}).TalkingPoints()).Length(0)
}
