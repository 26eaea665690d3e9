package source

// CharactersResponse is the envelope returned by GET /character
type CharactersResponse struct {
	Info    *Info           `json:"info"`
	Results *[]CharacterDTO `json:"results"`
}

// Info holds the pagination links of a listing page
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// CharacterDTO represents a character from the API
type CharacterDTO struct {
	ID       int          `json:"id"` // Not captured; see mapper
	Name     string       `json:"name"`
	Status   string       `json:"status"`
	Species  string       `json:"species"`
	Gender   string       `json:"gender"`
	Origin   NamedLinkDTO `json:"origin"`
	Location NamedLinkDTO `json:"location"`
	Image    string       `json:"image"`
	Episode  []string     `json:"episode"`
}

// NamedLinkDTO is the {name, url} pair used for origin and location
type NamedLinkDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EpisodeDTO represents the episode detail returned by GET /episode/{id}
type EpisodeDTO struct {
	Name    string `json:"name"`
	Episode string `json:"episode"` // Code, e.g. "S01E01"
	AirDate string `json:"air_date"`
}
