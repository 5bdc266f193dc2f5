package itunes

import (
	"fmt"
	"net/http"
)

const (
	DefaultEndpoint = "https://itunes.apple.com/search"
	MediaMusic      = "music"
	EntitySong      = "song"
)

type Client struct {
	Endpoint   string
	Country    string
	UserAgent  string
	HttpClient *http.Client
}

// SearchParams selects what the search endpoint returns. Empty Media,
// Entity and Country are left out of the request.
type SearchParams struct {
	Term    string
	Media   string
	Entity  string
	Country string
	Limit   int
}

type SearchResponse struct {
	ResultCount int      `json:"resultCount"`
	Results     []Result `json:"results"`
}

// Result is one entry of the search response. Every field is optional;
// non-track entries (collections, artists) leave the track fields empty.
type Result struct {
	WrapperType      string `json:"wrapperType"`
	Kind             string `json:"kind"`
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName"`
	ArtworkURL60     string `json:"artworkUrl60"`
	ArtworkURL100    string `json:"artworkUrl100"`
	PreviewURL       string `json:"previewUrl"`
	PrimaryGenreName string `json:"primaryGenreName"`
	TrackTimeMillis  int64  `json:"trackTimeMillis"`
	TrackViewURL     string `json:"trackViewUrl"`
}

// StatusError is returned for any non-200 response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d (%s)", e.StatusCode, e.Status)
}
