// Package competitor implements the tiered competitor-selection engine:
// it turns a noisy nearby-places candidate list into a small, relevant,
// quality-ranked competitor set for a subject business.
package competitor

import (
	"context"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

const (
	// SearchRadiusMeters is the hard geographic cutoff for candidates.
	SearchRadiusMeters = 6000.0
	// MaxCompetitors caps the competitor set per subject per run.
	MaxCompetitors = 6
)

// Tier identifies the strictness level that admitted a competitor.
// 0 is the strictest (exact anchor match at full baseline thresholds),
// 4 the loosest (score-based, any category).
type Tier int

// CandidateSource supplies nearby place candidates for a keyword around
// a point. Implementations own their timeouts.
type CandidateSource interface {
	Nearby(ctx context.Context, lat, lng, radiusMeters float64, keyword string) ([]model.CandidatePlace, error)
}

// Record is a selected competitor for a subject business.
type Record struct {
	SubjectID  string  `json:"subject_id" db:"subject_place_id"`
	RunID      string  `json:"run_id" db:"run_id"`
	PlaceID    string  `json:"place_id" db:"place_id"`
	Name       string  `json:"name" db:"name"`
	Rating     float64 `json:"rating" db:"rating"`
	Reviews    int     `json:"reviews" db:"review_count"`
	DistanceM  int     `json:"distance_m" db:"distance_m"`
	IsStronger bool    `json:"is_stronger" db:"is_stronger"`
	Tier       Tier    `json:"tier" db:"tier"`
	Raw        RawBag  `json:"raw" db:"raw"`
}

// RawBag carries the diagnostic payload stored alongside each record.
type RawBag struct {
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	Types           []string `json:"types,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
	MatchedCategory string   `json:"matched_category,omitempty"`
	Tier            Tier     `json:"tier"`
}
