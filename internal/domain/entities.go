package domain

import (
	"strings"
	"time"
)

// Character is a character as reported by the remote API.
// The upstream schema used here carries no stable identifier.
type Character struct {
	Name     string
	Status   string
	Species  string
	Gender   string
	Origin   string   // origin.name
	Location string   // location.name
	ImageURL string   // Avatar image URL
	Episodes []string // Episode detail URLs, in API order
}

// EpisodeRecord is a stored reference to an episode detail endpoint.
// Owned by exactly one CharacterRecord.
type EpisodeRecord struct {
	URL string `json:"url"`
}

// CharacterRecord is the local, mutable projection of a Character.
type CharacterRecord struct {
	ID          string          `json:"id"`           // Local row identifier (not a remote ID)
	DisplayName string          `json:"display_name"` // User-editable name shown in lists
	Name        string          `json:"name"`         // Name as fetched from the API
	Status      string          `json:"status"`
	Species     string          `json:"species"`
	Gender      string          `json:"gender"`
	Origin      string          `json:"origin"`
	Location    string          `json:"location"`
	ImageURL    string          `json:"image_url"`
	Episodes    []EpisodeRecord `json:"episodes"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// NewCharacterRecord builds a record for a freshly fetched character.
func NewCharacterRecord(id string, c Character, fetchedAt time.Time) CharacterRecord {
	episodes := make([]EpisodeRecord, len(c.Episodes))
	for i, u := range c.Episodes {
		episodes[i] = EpisodeRecord{URL: u}
	}
	return CharacterRecord{
		ID:          id,
		DisplayName: c.Name,
		Name:        c.Name,
		Status:      c.Status,
		Species:     c.Species,
		Gender:      c.Gender,
		Origin:      c.Origin,
		Location:    c.Location,
		ImageURL:    c.ImageURL,
		Episodes:    episodes,
		FetchedAt:   fetchedAt,
	}
}

// GetTitle returns the name to display, falling back to the remote name
func (r CharacterRecord) GetTitle() string {
	if strings.TrimSpace(r.DisplayName) != "" {
		return r.DisplayName
	}
	return r.Name
}

// GetDescription returns secondary info for list rows (e.g., "Human · Alive")
func (r CharacterRecord) GetDescription() string {
	parts := make([]string, 0, 2)
	if r.Species != "" {
		parts = append(parts, r.Species)
	}
	if r.Status != "" {
		parts = append(parts, r.Status)
	}
	return strings.Join(parts, " · ")
}

// EpisodeURLs returns the stored episode URLs in order
func (r CharacterRecord) EpisodeURLs() []string {
	urls := make([]string, len(r.Episodes))
	for i, e := range r.Episodes {
		urls[i] = e.URL
	}
	return urls
}

// Episode is the remote detail of a single episode.
type Episode struct {
	Name string // e.g., "Pilot"
	Code string // e.g., "S01E01"
}

// Page is one page of the character listing.
type Page struct {
	Characters []Character
	Next       string // Empty when there are no more pages
	Prev       string
}

// Cursor is the persisted pagination position.
// An empty Next means the listing is exhausted.
type Cursor struct {
	Next      string    `json:"next"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMore reports whether another page can be fetched
func (c Cursor) HasMore() bool {
	return c.Next != ""
}
