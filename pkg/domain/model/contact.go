package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ContactID identifies a contact within one user's contact list. It is
// derived from the display name and is not globally unique.
type ContactID string

// NewContactID derives a ContactID from a display name: trimmed, lowercased,
// with whitespace runs collapsed into a single hyphen.
func NewContactID(name string) ContactID {
	return ContactID(strings.Join(strings.Fields(strings.ToLower(name)), "-"))
}

func (id ContactID) String() string {
	return string(id)
}

// ContactHistoryEntry is one recorded interaction with a contact
type ContactHistoryEntry struct {
	Timestamp time.Time
	Notes     string
}

// Contact is a person the user has seen in search results or interacted with.
// ResponseScore and SimilarityScore are caches; both can be recomputed from
// History, AdditionalData and the owning user's goals.
type Contact struct {
	ID              ContactID
	Name            string
	Email           string
	LastContact     *time.Time // nil until the first interaction
	History         []ContactHistoryEntry
	ResponseScore   float64
	SimilarityScore float64
	AdditionalData  map[string]any
}

// Copy returns a copy that shares no slices or maps with c
func (c *Contact) Copy() *Contact {
	if c == nil {
		return nil
	}
	out := *c
	if c.LastContact != nil {
		t := *c.LastContact
		out.LastContact = &t
	}
	out.History = slices.Clone(c.History)
	out.AdditionalData = maps.Clone(c.AdditionalData)
	return &out
}

// AverageScore is the mean of similarity and response scores, used for ranking
func (c *Contact) AverageScore() float64 {
	return (c.SimilarityScore + c.ResponseScore) / 2
}

// ContactInput is an incoming sighting of, or interaction with, a contact
type ContactInput struct {
	Name           string
	Email          string
	Notes          string
	AdditionalData map[string]any
}

// CopyContacts deep-copies a contact list
func CopyContacts(contacts []*Contact) []*Contact {
	out := make([]*Contact, len(contacts))
	for i, c := range contacts {
		out[i] = c.Copy()
	}
	return out
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// findContact returns the index of the contact matching in, by email first
// and by normalized name otherwise, or -1.
func findContact(contacts []*Contact, in ContactInput) int {
	if email := normalizeEmail(in.Email); email != "" {
		for i, c := range contacts {
			if normalizeEmail(c.Email) == email {
				return i
			}
		}
	}

	if name := normalizeName(in.Name); name != "" {
		for i, c := range contacts {
			if normalizeName(c.Name) == name {
				return i
			}
		}
	}

	return -1
}

// UpsertContact merges in into contacts and returns the new list together
// with the created or updated contact. The input slice is not modified.
//
// History grows by exactly one entry when didInteract is true and is never
// rewritten otherwise. Repeating a call with didInteract=false is idempotent.
func UpsertContact(contacts []*Contact, in ContactInput, didInteract bool, now time.Time) ([]*Contact, *Contact, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" && email == "" {
		return nil, nil, goerr.Wrap(ErrInvalidContact, "contact requires a name or an email")
	}

	out := CopyContacts(contacts)

	idx := findContact(out, in)
	if idx < 0 {
		if name == "" {
			name = email
		}
		c := &Contact{
			ID:             uniqueContactID(out, NewContactID(name)),
			Name:           name,
			Email:          email,
			History:        []ContactHistoryEntry{},
			AdditionalData: maps.Clone(in.AdditionalData),
		}
		if c.AdditionalData == nil {
			c.AdditionalData = map[string]any{}
		}
		if didInteract {
			recordInteraction(c, in.Notes, now)
		}
		out = append(out, c)
		return out, c.Copy(), nil
	}

	c := out[idx]
	if name != "" {
		c.Name = name
	}
	if email != "" {
		c.Email = email
	}
	if c.AdditionalData == nil {
		c.AdditionalData = map[string]any{}
	}
	maps.Copy(c.AdditionalData, in.AdditionalData)
	if didInteract {
		recordInteraction(c, in.Notes, now)
	}

	return out, c.Copy(), nil
}

// uniqueContactID returns base, or base with the first free numeric suffix
// when another contact already holds it. Renames keep IDs, so a new contact
// may derive an ID that is taken.
func uniqueContactID(contacts []*Contact, base ContactID) ContactID {
	taken := make(map[ContactID]bool, len(contacts))
	for _, c := range contacts {
		taken[c.ID] = true
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = ContactID(fmt.Sprintf("%s-%d", base, n))
	}
	return id
}

func recordInteraction(c *Contact, notes string, now time.Time) {
	c.History = append(c.History, ContactHistoryEntry{Timestamp: now, Notes: notes})
	t := now
	c.LastContact = &t
}
