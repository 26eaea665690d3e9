package source

import (
	"fmt"

	"github.com/mmcdole/rickdex/internal/domain"
)

// MapPage converts a listing envelope to a domain page.
// A response missing either info or results is a schema mismatch.
func MapPage(resp CharactersResponse) (domain.Page, error) {
	if resp.Info == nil || resp.Results == nil {
		return domain.Page{}, fmt.Errorf("%w: missing info or results", domain.ErrDecoding)
	}

	chars := make([]domain.Character, 0, len(*resp.Results))
	for _, c := range *resp.Results {
		chars = append(chars, mapCharacter(c))
	}

	return domain.Page{
		Characters: chars,
		Next:       deref(resp.Info.Next),
		Prev:       deref(resp.Info.Prev),
	}, nil
}

// mapCharacter drops the numeric id: identity stays positional
func mapCharacter(c CharacterDTO) domain.Character {
	episodes := make([]string, len(c.Episode))
	copy(episodes, c.Episode)
	return domain.Character{
		Name:     c.Name,
		Status:   c.Status,
		Species:  c.Species,
		Gender:   c.Gender,
		Origin:   c.Origin.Name,
		Location: c.Location.Name,
		ImageURL: c.Image,
		Episodes: episodes,
	}
}

// MapEpisode converts an episode detail response
func MapEpisode(e EpisodeDTO) (domain.Episode, error) {
	if e.Name == "" || e.Episode == "" {
		return domain.Episode{}, fmt.Errorf("%w: episode missing name or code", domain.ErrDecoding)
	}
	return domain.Episode{Name: e.Name, Code: e.Episode}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
