package types

import "fmt"

// SearchPurpose tells the search tool why the agent is looking for profiles
type SearchPurpose string

const (
	SearchPurposeGeneral  SearchPurpose = "general_search"
	SearchPurposeResearch SearchPurpose = "research"
)

// AllSearchPurposes returns all valid search purposes
func AllSearchPurposes() []SearchPurpose {
	return []SearchPurpose{
		SearchPurposeGeneral,
		SearchPurposeResearch,
	}
}

// IsValid checks if the search purpose is valid
func (p SearchPurpose) IsValid() bool {
	switch p {
	case SearchPurposeGeneral, SearchPurposeResearch:
		return true
	default:
		return false
	}
}

// Normalize treats an empty purpose as SearchPurposeGeneral
func (p SearchPurpose) Normalize() SearchPurpose {
	if p == "" {
		return SearchPurposeGeneral
	}
	return p
}

func (p SearchPurpose) String() string {
	return string(p)
}

// EnrichmentPurpose describes what enriched profiles will be used for
type EnrichmentPurpose string

const (
	EnrichmentPurposePersonalization EnrichmentPurpose = "personalization"
	EnrichmentPurposeResearch        EnrichmentPurpose = "research"
	EnrichmentPurposeOutreach        EnrichmentPurpose = "outreach"
)

// AllEnrichmentPurposes returns all valid enrichment purposes
func AllEnrichmentPurposes() []EnrichmentPurpose {
	return []EnrichmentPurpose{
		EnrichmentPurposePersonalization,
		EnrichmentPurposeResearch,
		EnrichmentPurposeOutreach,
	}
}

// IsValid checks if the enrichment purpose is valid
func (p EnrichmentPurpose) IsValid() bool {
	switch p {
	case EnrichmentPurposePersonalization,
		EnrichmentPurposeResearch,
		EnrichmentPurposeOutreach:
		return true
	default:
		return false
	}
}

// Normalize treats an empty purpose as EnrichmentPurposePersonalization
func (p EnrichmentPurpose) Normalize() EnrichmentPurpose {
	if p == "" {
		return EnrichmentPurposePersonalization
	}
	return p
}

func (p EnrichmentPurpose) String() string {
	return string(p)
}

// ParseEnrichmentPurpose parses a string into an EnrichmentPurpose. Empty input
// yields the default purpose.
func ParseEnrichmentPurpose(s string) (EnrichmentPurpose, error) {
	p := EnrichmentPurpose(s).Normalize()
	if !p.IsValid() {
		return "", fmt.Errorf("invalid enrichment purpose: %s", s)
	}
	return p, nil
}

// ParseSearchPurpose parses a string into a SearchPurpose. Empty input yields
// the default purpose.
func ParseSearchPurpose(s string) (SearchPurpose, error) {
	p := SearchPurpose(s).Normalize()
	if !p.IsValid() {
		return "", fmt.Errorf("invalid search purpose: %s", s)
	}
	return p, nil
}
