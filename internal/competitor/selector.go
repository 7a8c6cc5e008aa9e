package competitor

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/category"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/geo"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

// Selector runs the tiered fallback selection for a subject business
// and replaces its persisted competitor set with the result.
type Selector struct {
	source CandidateSource
	store  Store
}

// NewSelector creates a Selector with the given dependencies.
func NewSelector(source CandidateSource, store Store) *Selector {
	return &Selector{source: source, store: store}
}

// survivor is a candidate that passed the hard filters, with its
// precomputed distance and strength flag.
type survivor struct {
	place      model.CandidatePlace
	distanceM  float64
	isStronger bool
}

// tierSpec is one rung of the strictness ladder: a category predicate
// plus rating/review floors. Rungs are evaluated in order and the first
// non-empty result wins.
type tierSpec struct {
	tier       Tier
	categoryOK func(model.CandidatePlace) bool
	minRating  float64
	minReviews float64
}

// Run selects up to MaxCompetitors competitors for the subject and
// replaces its stored set. A subject without coordinates is skipped
// (logged, nil result, no error); a candidate-source failure
// propagates, since a broken search has no safe partial result.
func (s *Selector) Run(ctx context.Context, subject model.Business, latest *model.Snapshot) ([]Record, error) {
	log := zap.L().With(zap.String("subject", subject.PlaceID))

	if !subject.HasCoordinates() {
		log.Warn("competitor: subject has no coordinates, skipping run")
		return nil, nil
	}

	baseline := subject.ResolveBaseline(latest)
	label := subject.CategoryLabel()
	anchor := category.Resolve(label)

	keyword := anchor.Label
	if !anchor.Specific() && label != "" {
		keyword = label
	}

	candidates, err := s.source.Nearby(ctx, *subject.Lat, *subject.Lng, SearchRadiusMeters, keyword)
	if err != nil {
		return nil, eris.Wrap(err, "competitor: nearby search")
	}

	survivors := hardFilter(subject, baseline, candidates)

	var picked []survivor
	var admitted Tier
	if label == "" {
		// No resolvable category: the ladder has nothing to match
		// against, go straight to score-based selection.
		picked, admitted = scoreSelect(survivors), TierScored
	} else {
		picked, admitted = ladderSelect(survivors, baseline, anchor)
	}

	records := buildRecords(subject.PlaceID, baseline, anchor, admitted, picked)

	if err := s.store.Replace(ctx, subject.PlaceID, records); err != nil {
		return nil, eris.Wrap(err, "competitor: replace stored set")
	}

	log.Info("competitor: run complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("survivors", len(survivors)),
		zap.Int("selected", len(records)),
		zap.Int("tier", int(admitted)),
	)
	return records, nil
}

// Tier values for the ladder rungs.
const (
	TierExact Tier = iota
	TierRelaxedReviews
	TierRelaxedRating
	TierTypeOverlap
	TierScored
)

// hardFilter applies the filters that hold at every tier: drop the
// subject itself, non-operational places, and anything beyond the
// radius. Strength is informational, never a filter.
func hardFilter(subject model.Business, baseline model.Baseline, candidates []model.CandidatePlace) []survivor {
	var out []survivor
	for _, c := range candidates {
		if c.ID == "" || c.ID == subject.PlaceID {
			continue
		}
		if !c.Operational() {
			continue
		}
		dist, ok := geo.DistanceMeters(subject.Lat, subject.Lng, c.Lat, c.Lng)
		if !ok || dist > SearchRadiusMeters {
			continue
		}
		out = append(out, survivor{
			place:      c,
			distanceM:  dist,
			isStronger: c.Rating >= baseline.Rating && c.ReviewCount >= baseline.Reviews,
		})
	}
	return out
}

// ladderSelect walks the strictness ladder and returns the first rung's
// survivors, falling through to score-based selection when every rung
// comes up empty.
func ladderSelect(survivors []survivor, baseline model.Baseline, anchor category.Anchor) ([]survivor, Tier) {
	exact := func(c model.CandidatePlace) bool { return category.Matches(c.Types, anchor) }
	overlap := func(c model.CandidatePlace) bool { return category.TypeOverlap(c.Types, anchor) }

	ladder := []tierSpec{
		{TierExact, exact, baseline.Rating, float64(baseline.Reviews)},
		{TierRelaxedReviews, exact, baseline.Rating, math.Max(10, float64(baseline.Reviews)*0.5)},
		{TierRelaxedRating, exact, baseline.Rating - 0.3, math.Max(5, float64(baseline.Reviews)*0.3)},
		{TierTypeOverlap, overlap, baseline.Rating - 0.5, 5},
	}

	for _, spec := range ladder {
		var hits []survivor
		for _, sv := range survivors {
			if !spec.categoryOK(sv.place) {
				continue
			}
			if sv.place.Rating < spec.minRating {
				continue
			}
			if float64(sv.place.ReviewCount) < spec.minReviews {
				continue
			}
			hits = append(hits, sv)
		}
		if len(hits) > 0 {
			return orderAndCap(hits), spec.tier
		}
	}

	return scoreSelect(survivors), TierScored
}

// scoreSelect is the tier-4 fallback: rank every survivor by a quality
// score and take the top of the list. No category or threshold filters.
func scoreSelect(survivors []survivor) []survivor {
	score := func(sv survivor) float64 {
		return sv.place.Rating*0.7 + math.Log(1+float64(sv.place.ReviewCount))*0.3
	}

	sorted := make([]survivor, len(survivors))
	copy(sorted, survivors)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := score(sorted[i]), score(sorted[j])
		if si != sj {
			return si > sj
		}
		return sorted[i].distanceM < sorted[j].distanceM
	})

	if len(sorted) > MaxCompetitors {
		sorted = sorted[:MaxCompetitors]
	}
	return sorted
}

// orderAndCap applies the final ordering for ladder tiers: rating
// descending, review count descending, distance ascending; capped.
func orderAndCap(hits []survivor) []survivor {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.place.Rating != b.place.Rating {
			return a.place.Rating > b.place.Rating
		}
		if a.place.ReviewCount != b.place.ReviewCount {
			return a.place.ReviewCount > b.place.ReviewCount
		}
		return a.distanceM < b.distanceM
	})

	if len(hits) > MaxCompetitors {
		hits = hits[:MaxCompetitors]
	}
	return hits
}

// buildRecords turns selected survivors into persistable records, one
// run id per invocation.
func buildRecords(subjectID string, baseline model.Baseline, anchor category.Anchor, tier Tier, picked []survivor) []Record {
	baselineLabel := ""
	if tier != TierScored && anchor.Specific() {
		baselineLabel = anchor.Label
	}

	runID := uuid.NewString()
	records := make([]Record, 0, len(picked))
	for _, sv := range picked {
		matched := baselineLabel
		if tier == TierScored && category.Matches(sv.place.Types, anchor) {
			matched = anchor.Label
		}
		records = append(records, Record{
			SubjectID:  subjectID,
			RunID:      runID,
			PlaceID:    sv.place.ID,
			Name:       sv.place.Name,
			Rating:     sv.place.Rating,
			Reviews:    sv.place.ReviewCount,
			DistanceM:  int(math.Round(sv.distanceM)),
			IsStronger: sv.isStronger,
			Tier:       tier,
			Raw: RawBag{
				Lat:             sv.place.Lat,
				Lng:             sv.place.Lng,
				Types:           sv.place.Types,
				Reasons:         Reasons(baseline, sv.place.Rating, sv.place.ReviewCount),
				MatchedCategory: matched,
				Tier:            tier,
			},
		})
	}
	return records
}
