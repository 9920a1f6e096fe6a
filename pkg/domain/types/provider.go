package types

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidProviderName is returned for provider names outside AllProviderNames
var ErrInvalidProviderName = goerr.New("invalid provider name")

// ProviderName identifies a profile data provider in the lookup chain
type ProviderName string

const (
	ProviderLinkd       ProviderName = "linkd"
	ProviderRapidAPI    ProviderName = "rapidapi"
	ProviderSignalHire  ProviderName = "signalhire"
	ProviderPlaceholder ProviderName = "placeholder"
)

// AllProviderNames returns all known provider names
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderLinkd,
		ProviderRapidAPI,
		ProviderSignalHire,
		ProviderPlaceholder,
	}
}

// IsValid checks if the provider name is known
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderLinkd, ProviderRapidAPI, ProviderSignalHire, ProviderPlaceholder:
		return true
	default:
		return false
	}
}

func (p ProviderName) String() string {
	return string(p)
}

// ParseProviderName parses a string into a ProviderName
func ParseProviderName(s string) (ProviderName, error) {
	p := ProviderName(s)
	if !p.IsValid() {
		return "", goerr.Wrap(ErrInvalidProviderName, "unknown provider", goerr.V("name", s))
	}
	return p, nil
}
