package library

import (
	"context"
	"errors"

	"github.com/yhkl-dev/PreviewCLI/domain"
)

const (
	// DefaultLimit is the result count requested when the caller passes none
	DefaultLimit = 500
	// MaxLimit is the largest result count the catalog accepts
	MaxLimit = 500
)

var ErrEmptyQuery = errors.New("empty search query")

// Library searches a remote catalog. Implementations return only tracks
// that carry a preview locator, in catalog order.
type Library interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
