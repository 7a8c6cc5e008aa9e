package competitor

import "github.com/ibrhmmrana/hunter2.0-sub001/internal/model"

// Reason tag thresholds. Gap tags compare competitor against the
// subject's baseline; absolute tags apply only when no gap qualifies.
const (
	higherRatingGap   = 0.5
	betterRatingGap   = 0.2
	moreReviewsGap    = 100
	betterReviewedGap = 50

	highRatingFloor   = 4.5
	wellReviewedFloor = 100

	maxReasons = 3
)

// Reasons produces up to three short "why they're ahead" tags for a
// competitor. Pure comparison logic; no model call. Tag order is fixed
// so identical inputs always yield identical output.
func Reasons(baseline model.Baseline, rating float64, reviews int) []string {
	var tags []string

	switch {
	case rating-baseline.Rating >= higherRatingGap:
		tags = append(tags, "Higher rating")
	case rating-baseline.Rating >= betterRatingGap:
		tags = append(tags, "Better rating")
	}

	switch {
	case reviews-baseline.Reviews >= moreReviewsGap:
		tags = append(tags, "More reviews")
	case reviews-baseline.Reviews >= betterReviewedGap:
		tags = append(tags, "Better reviewed")
	}

	if len(tags) == 0 {
		if rating >= highRatingFloor {
			tags = append(tags, "High rating")
		}
		if reviews >= wellReviewedFloor {
			tags = append(tags, "Well reviewed")
		}
	}

	if len(tags) > maxReasons {
		tags = tags[:maxReasons]
	}
	return tags
}
