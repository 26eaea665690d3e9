package domain

import (
	"context"
)

// CharacterRepository provides access to the remote character API.
// Implementations never retry; retry policy belongs to the caller.
type CharacterRepository interface {
	// FetchPage fetches the listing page at cursor and reports the next cursor
	FetchPage(ctx context.Context, cursor string) (Page, error)

	// FetchEpisode fetches the detail of a single episode
	FetchEpisode(ctx context.Context, episodeURL string) (Episode, error)
}

// ImageRepository fetches raw image bytes (character avatars)
type ImageRepository interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}
