package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

const (
	DefaultProfileName    = "Unknown User"
	DefaultProfileTitle   = "No title available"
	DefaultProfilePicture = "https://cdn-icons-png.flaticon.com/512/174/174857.png"
	// FallbackEmailDomain is used when no company is known
	FallbackEmailDomain = "example.com"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Experience is one position in a profile's work history
type Experience struct {
	Title    string
	Company  string
	Industry string
}

// Education is one school in a profile's education history
type Education struct {
	School string
	Degree string
}

// Profile is a search result. When EmailSynthesized is true, Email was guessed
// by SynthesizeEmail and has not been verified.
type Profile struct {
	Name             string
	Title            string
	Email            string
	EmailSynthesized bool
	ProfileURL       string
	ProfilePicture   string
	Experience       []Experience
	Education        []Education
	Source           types.ProviderName
}

// SynthesizeEmail guesses an address as name@company.com with every
// non-alphanumeric character removed. It is a heuristic and is often wrong.
func SynthesizeEmail(name, company string) string {
	local := nonAlnum.ReplaceAllString(strings.ToLower(name), "")
	domain := FallbackEmailDomain
	if c := nonAlnum.ReplaceAllString(strings.ToLower(company), ""); c != "" {
		domain = c + ".com"
	}
	return fmt.Sprintf("%s@%s", local, domain)
}

// Normalize fills missing display fields with defaults and synthesizes an
// email when the provider returned none.
func (p *Profile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = DefaultProfileName
	}

	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultProfileTitle
		if len(p.Experience) > 0 && p.Experience[0].Title != "" {
			p.Title = p.Experience[0].Title
		}
	}

	if p.Email == "" {
		company := ""
		if len(p.Experience) > 0 {
			company = p.Experience[0].Company
		}
		p.Email = SynthesizeEmail(p.Name, company)
		p.EmailSynthesized = true
	}

	if p.ProfileURL == "" {
		p.ProfileURL = "https://linkedin.com/in/" + nonAlnum.ReplaceAllString(strings.ToLower(p.Name), "")
	}
	if p.ProfilePicture == "" {
		p.ProfilePicture = DefaultProfilePicture
	}
}

// ContactInput converts a search result into a contact sighting
func (p *Profile) ContactInput() ContactInput {
	data := map[string]any{
		"title":          p.Title,
		"profileUrl":     p.ProfileURL,
		"profilePicture": p.ProfilePicture,
	}
	if p.Source != "" {
		data["source"] = p.Source.String()
	}
	if p.EmailSynthesized {
		data["emailSynthesized"] = true
	}
	if len(p.Experience) > 0 {
		exp := make([]any, len(p.Experience))
		for i, e := range p.Experience {
			exp[i] = map[string]any{"title": e.Title, "company": e.Company, "industry": e.Industry}
		}
		data["experience"] = exp
		if p.Experience[0].Company != "" {
			data["company"] = p.Experience[0].Company
		}
	}
	if len(p.Education) > 0 {
		edu := make([]any, len(p.Education))
		for i, e := range p.Education {
			edu[i] = map[string]any{"school": e.School, "degree": e.Degree}
		}
		data["education"] = edu
	}

	return ContactInput{
		Name:           p.Name,
		Email:          p.Email,
		AdditionalData: data,
	}
}

// DetailedProfile is an enriched profile. Fields a provider cannot supply are
// left empty.
type DetailedProfile struct {
	ProfileURL        string
	Name              string
	Title             string
	Industry          string
	Company           string
	Location          string
	Skills            []string
	Interests         []string
	Education         []string
	Languages         []string
	Certifications    []string
	Recommendations   []string
	ConnectionDegree  string
	SharedConnections int
	MutualConnections int
	Articles          []string
	Posts             []string
	ProfileSummary    string
	RecentActivity    []string
	CommonGroups      []string
	Source            types.ProviderName
	Placeholder       bool
}

// TalkingPoints lists conversation openers derived from the profile
func (d *DetailedProfile) TalkingPoints() []string {
	points := []string{}
	if d == nil {
		return points
	}
	if d.Industry != "" {
		points = append(points, fmt.Sprintf("Experience in the %s industry", d.Industry))
	}
	if d.Company != "" {
		points = append(points, fmt.Sprintf("Works at %s", d.Company))
	}
	if len(d.Skills) > 0 {
		top := d.Skills
		if len(top) > 3 {
			top = top[:3]
		}
		points = append(points, fmt.Sprintf("Expertise in %s", strings.Join(top, ", ")))
	}
	if len(d.Education) > 0 && d.Education[0] != "" {
		points = append(points, fmt.Sprintf("Educational background at %s", d.Education[0]))
	}
	if d.Location != "" {
		points = append(points, fmt.Sprintf("Based in %s", d.Location))
	}
	return points
}

// AdditionalData returns the enrichment fields stored on a contact
func (d *DetailedProfile) AdditionalData() map[string]any {
	data := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			data[k] = v
		}
	}
	setList := func(k string, v []string) {
		if len(v) > 0 {
			data[k] = append([]string(nil), v...)
		}
	}

	set("title", d.Title)
	set("industry", d.Industry)
	set("company", d.Company)
	set("location", d.Location)
	set("profileUrl", d.ProfileURL)
	set("profileSummary", d.ProfileSummary)
	setList("skills", d.Skills)
	setList("interests", d.Interests)
	setList("educationHistory", d.Education)
	setList("languages", d.Languages)
	setList("certifications", d.Certifications)
	if d.Source != "" {
		data["enrichedBy"] = d.Source.String()
	}
	return data
}
