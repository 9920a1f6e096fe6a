package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

var placeholderSkills = []string{
	"JavaScript",
	"TypeScript",
	"React",
	"Node.js",
	"Python",
	"AWS",
	"Product Management",
	"Leadership",
}

// Placeholder fabricates a deterministic profile from the URL. Results are
// marked Placeholder and must not be presented as real data.
type Placeholder struct{}

var _ Detailer = Placeholder{}

func (Placeholder) Name() types.ProviderName { return types.ProviderPlaceholder }

func (Placeholder) Capabilities() Capability { return CapDetail }

// Detail never fails
func (Placeholder) Detail(_ context.Context, profileURL string) (*model.DetailedProfile, error) {
	slug := profileURL
	if i := strings.LastIndex(strings.TrimRight(profileURL, "/"), "/"); i >= 0 {
		slug = strings.TrimRight(profileURL, "/")[i+1:]
	}
	name := strings.Join(strings.Split(slug, "-"), " ")

	hash := 0
	for _, r := range name {
		hash += int(r)
	}
	var skills []string
	for i, s := range placeholderSkills {
		if (hash+i)%3 == 0 {
			skills = append(skills, s)
		}
	}

	if strings.TrimSpace(name) == "" {
		name = model.DefaultProfileName
	}

	return &model.DetailedProfile{
		ProfileURL:     profileURL,
		Name:           name,
		Title:          "Software Engineer",
		Industry:       "Software Development",
		Company:        "Tech Company",
		Location:       "San Francisco, CA",
		Skills:         skills,
		Interests:      []string{"Technology", "Innovation"},
		Education:      []string{"University of Technology"},
		Languages:      []string{"English"},
		Certifications: []string{},
		ProfileSummary: fmt.Sprintf("Professional in the technology sector with expertise in %s", strings.Join(skills, ", ")),
		Source:         types.ProviderPlaceholder,
		Placeholder:    true,
	}, nil
}
