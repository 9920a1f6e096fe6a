package profile

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

const (
	rapidAPIHost = "linkedin-data-api.p.rapidapi.com"
	// DefaultRapidAPIBaseURL is the RapidAPI LinkedIn Data API root
	DefaultRapidAPIBaseURL = "https://" + rapidAPIHost
)

// RapidAPI enriches profiles with the RapidAPI LinkedIn Data API
type RapidAPI struct {
	clientConfig
	apiKey string
}

var _ Detailer = (*RapidAPI)(nil)

// NewRapidAPI returns ErrNotConfigured when apiKey is empty
func NewRapidAPI(apiKey string, opts ...Option) (*RapidAPI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, goerr.Wrap(ErrNotConfigured, "RapidAPI key is required")
	}
	return &RapidAPI{
		clientConfig: newClientConfig(DefaultRapidAPIBaseURL, opts),
		apiKey:       apiKey,
	}, nil
}

func (x *RapidAPI) Name() types.ProviderName { return types.ProviderRapidAPI }

func (x *RapidAPI) Capabilities() Capability { return CapDetail }

type rapidAPIProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Headline  string `json:"headline"`
	Summary   string `json:"summary"`
	Position  []struct {
		Title           string `json:"title"`
		CompanyName     string `json:"companyName"`
		CompanyIndustry string `json:"companyIndustry"`
	} `json:"position"`
	Geo *struct {
		Full string `json:"full"`
	} `json:"geo"`
	Skills []struct {
		Name string `json:"name"`
	} `json:"skills"`
	Educations []struct {
		SchoolName string `json:"schoolName"`
	} `json:"educations"`
}

// Detail fetches a profile by its LinkedIn URL
func (x *RapidAPI) Detail(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	q := url.Values{}
	q.Set("url", profileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/get-profile-data-by-url?"+q.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("x-rapidapi-host", rapidAPIHost)
	req.Header.Set("x-rapidapi-key", x.apiKey)

	var resp rapidAPIProfile
	if _, err := x.doJSON(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "RapidAPI profile lookup failed", goerr.V("url", profileURL))
	}

	return resp.toDetailedProfile(profileURL), nil
}

func (r *rapidAPIProfile) toDetailedProfile(profileURL string) *model.DetailedProfile {
	d := &model.DetailedProfile{
		ProfileURL:     profileURL,
		Name:           strings.TrimSpace(r.FirstName + " " + r.LastName),
		Title:          r.Headline,
		ProfileSummary: r.Summary,
		Skills:         []string{},
		Interests:      []string{},
		Education:      []string{},
		Languages:      []string{},
		Certifications: []string{},
		Source:         types.ProviderRapidAPI,
	}
	if d.Name == "" {
		d.Name = model.DefaultProfileName
	}
	if len(r.Position) > 0 {
		d.Industry = r.Position[0].CompanyIndustry
		d.Company = r.Position[0].CompanyName
		if d.Title == "" {
			d.Title = r.Position[0].Title
		}
	}
	if r.Geo != nil {
		d.Location = r.Geo.Full
	}
	for _, s := range r.Skills {
		if s.Name != "" {
			d.Skills = append(d.Skills, s.Name)
		}
	}
	for _, e := range r.Educations {
		if e.SchoolName != "" {
			d.Education = append(d.Education, e.SchoolName)
		}
	}
	return d
}
