// Package rank resolves a business's position in live search results
// for its highest-value query and extracts the businesses ranked around
// it, loosening the query when the raw result is a dead end.
package rank

import (
	"context"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

const (
	// maxLeaders caps the leader (or chaser) list.
	maxLeaders = 6
	// fuzzyMatchMaxMeters bounds the proximity check used when the
	// subject can't be located by place id.
	fuzzyMatchMaxMeters = 100.0
	// maxLoosenAttempts bounds the query-loosening loop.
	maxLoosenAttempts = 3
	// sentinelRank marks a rank that could not be resolved at all.
	sentinelRank = 999
	// searchRadiusMeters is the bias radius for rank text searches,
	// wider than competitor discovery because search intent is not
	// strictly local.
	searchRadiusMeters = 10000.0
	// minPhotos is the photo count below which a leader gets a details
	// backfill call.
	minPhotos = 2
)

const headingNoClearGap = "You're not clearly being outranked right now"

// Searcher is the slice of the places capability this package needs:
// ranked text search plus a per-place details lookup for photo
// backfill. Result order from TextSearch is load-bearing.
type Searcher interface {
	TextSearch(ctx context.Context, query string, lat, lng, radiusMeters float64) ([]model.CandidatePlace, error)
	Details(ctx context.Context, placeID string) ([]string, error)
}

// Leader is one business ranked around the subject.
type Leader struct {
	PlaceID   string   `json:"place_id"`
	Name      string   `json:"name"`
	Rank      int      `json:"rank"`
	Rating    float64  `json:"rating"`
	Reviews   int      `json:"reviews"`
	DistanceM int      `json:"distance_m"`
	Photos    []string `json:"photos,omitempty"`
}

// Result is the resolved ranking picture for one subject.
type Result struct {
	// Query is the query string the result was actually computed from,
	// which may be a loosened or broader variant of the original.
	Query string `json:"query"`
	// Rank is never zero: position in results when found, count+1 when
	// beyond the visible window, sentinelRank when nothing resolved.
	Rank    int      `json:"rank"`
	Leaders []Leader `json:"leaders"`
	Heading string   `json:"heading"`
	// IsChasers marks the leader list as the businesses immediately
	// behind a subject that is ranked #1.
	IsChasers bool `json:"is_chasers"`
	// StillNumberOne is set only when every attempted query variant
	// left the subject at rank 1.
	StillNumberOne bool `json:"still_number_one"`
}
