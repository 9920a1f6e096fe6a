package profile

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
)

// DefaultLinkdBaseURL is the Linkd search API root
const DefaultLinkdBaseURL = "https://search.linkd.inc/api"

const defaultSearchLimit = 10

// Linkd searches profiles through the Linkd search API
type Linkd struct {
	clientConfig
	apiKey string
}

var _ Searcher = (*Linkd)(nil)

// NewLinkd returns ErrNotConfigured when apiKey is empty
func NewLinkd(apiKey string, opts ...Option) (*Linkd, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, goerr.Wrap(ErrNotConfigured, "Linkd API key is required")
	}
	return &Linkd{
		clientConfig: newClientConfig(DefaultLinkdBaseURL, opts),
		apiKey:       apiKey,
	}, nil
}

func (x *Linkd) Name() types.ProviderName { return types.ProviderLinkd }

func (x *Linkd) Capabilities() Capability { return CapSearch }

type linkdResponse struct {
	Results *[]linkdResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
	Error   string         `json:"error,omitempty"`
}

type linkdResult struct {
	Profile *struct {
		Name              string `json:"name"`
		Title             string `json:"title"`
		Headline          string `json:"headline"`
		Location          string `json:"location"`
		LinkedinURL       string `json:"linkedin_url"`
		ProfilePictureURL string `json:"profile_picture_url"`
	} `json:"profile"`
	Experience []struct {
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
	} `json:"experience"`
	Education []struct {
		Degree     string `json:"degree"`
		SchoolName string `json:"school_name"`
	} `json:"education"`
}

// Search queries Linkd. Profiles are normalized before being returned.
func (x *Linkd) Search(ctx context.Context, query string, limit int) ([]*model.Profile, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/search/users?"+q.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+x.apiKey)

	var resp linkdResponse
	if _, err := x.doJSON(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "Linkd search failed", goerr.V("query", query))
	}

	if resp.Error != "" {
		return nil, goerr.Wrap(ErrInvalidResponse, "Linkd returned an error", goerr.V("error", resp.Error))
	}
	if resp.Results == nil {
		return nil, goerr.Wrap(ErrInvalidResponse, "results array not found")
	}

	profiles := make([]*model.Profile, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		profiles = append(profiles, r.toProfile())
	}
	return profiles, nil
}

func (r *linkdResult) toProfile() *model.Profile {
	p := &model.Profile{Source: types.ProviderLinkd}
	if r.Profile != nil {
		p.Name = r.Profile.Name
		p.Title = r.Profile.Title
		p.ProfileURL = r.Profile.LinkedinURL
		p.ProfilePicture = r.Profile.ProfilePictureURL
	}
	for _, e := range r.Experience {
		p.Experience = append(p.Experience, model.Experience{Title: e.Title, Company: e.CompanyName})
	}
	for _, e := range r.Education {
		p.Education = append(p.Education, model.Education{School: e.SchoolName, Degree: e.Degree})
	}
	p.Normalize()
	return p
}
