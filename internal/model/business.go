// Package model defines the core types shared by the competitive
// discovery and ranking engine.
package model

import "time"

// Business is the subject of a competitive analysis: the owner's own
// map listing.
type Business struct {
	PlaceID           string   `json:"place_id" db:"place_id"`
	OwnerID           string   `json:"owner_id" db:"owner_id"`
	Name              string   `json:"name" db:"name"`
	Lat               *float64 `json:"lat,omitempty" db:"lat"`
	Lng               *float64 `json:"lng,omitempty" db:"lng"`
	PrimaryCategory   string   `json:"primary_category,omitempty" db:"primary_category"`
	SecondaryCategory string   `json:"secondary_category,omitempty" db:"secondary_category"`
	Categories        []string `json:"categories,omitempty" db:"categories"`
	Suburb            string   `json:"suburb,omitempty" db:"suburb"`
	City              string   `json:"city,omitempty" db:"city"`

	// Stored baseline metrics, used when no fresher snapshot exists.
	Rating      float64 `json:"rating" db:"rating"`
	ReviewCount int     `json:"review_count" db:"review_count"`
}

// Snapshot is a point-in-time capture of a listing's quality metrics.
type Snapshot struct {
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	CapturedAt  time.Time `json:"captured_at"`
}

// Baseline holds the resolved quality metrics used for competitor
// threshold comparisons.
type Baseline struct {
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
}

// ResolveBaseline returns the business's current quality metrics,
// preferring the most recent snapshot and falling back to the stored
// values. Entirely unknown metrics resolve to zero so a run can still
// proceed at the least selective tier.
func (b Business) ResolveBaseline(latest *Snapshot) Baseline {
	if latest != nil && (latest.Rating > 0 || latest.ReviewCount > 0) {
		return Baseline{Rating: latest.Rating, Reviews: latest.ReviewCount}
	}
	return Baseline{Rating: b.Rating, Reviews: b.ReviewCount}
}

// HasCoordinates reports whether the business carries a usable location.
func (b Business) HasCoordinates() bool {
	return b.Lat != nil && b.Lng != nil
}

// CategoryLabel returns the best free-text category available for the
// business, or "" when it has none.
func (b Business) CategoryLabel() string {
	if b.PrimaryCategory != "" {
		return b.PrimaryCategory
	}
	if b.SecondaryCategory != "" {
		return b.SecondaryCategory
	}
	if len(b.Categories) > 0 {
		return b.Categories[0]
	}
	return ""
}
