package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/itunes"
)

type searcher interface {
	Search(ctx context.Context, p itunes.SearchParams) ([]itunes.Result, error)
}

type ITunesLibrary struct {
	client searcher
	media  string
	entity string
}

func NewITunesLibrary(client *itunes.Client, media, entity string) *ITunesLibrary {
	if media == "" {
		media = itunes.MediaMusic
	}
	return &ITunesLibrary{
		client: client,
		media:  media,
		entity: entity,
	}
}

func (l *ITunesLibrary) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	results, err := l.client.Search(ctx, itunes.SearchParams{
		Term:   query,
		Media:  l.media,
		Entity: l.entity,
		Limit:  clampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return convertToDomainTracks(results), nil
}

// convertToDomainTracks keeps catalog order and drops every result that has
// no preview to play.
func convertToDomainTracks(results []itunes.Result) []domain.Track {
	return lo.FilterMap(results, func(r itunes.Result, _ int) (domain.Track, bool) {
		if r.PreviewURL == "" {
			return domain.Track{}, false
		}
		return convertToDomainTrack(r), true
	})
}

func convertToDomainTrack(r itunes.Result) domain.Track {
	artwork := r.ArtworkURL100
	if artwork == "" {
		artwork = r.ArtworkURL60
	}

	return domain.Track{
		ID:          strconv.FormatInt(r.TrackID, 10),
		Title:       r.TrackName,
		Artist:      r.ArtistName,
		Collection:  r.CollectionName,
		Genre:       r.PrimaryGenreName,
		ArtworkURL:  artwork,
		PreviewURL:  r.PreviewURL,
		TrackLength: time.Duration(r.TrackTimeMillis) * time.Millisecond,
	}
}
