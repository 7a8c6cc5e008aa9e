package rank

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/geo"
	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
	"github.com/ibrhmmrana/hunter2.0-sub001/pkg/querygen"
)

// Resolver drives the rank state machine: evaluate the primary query,
// loosen it while the result is a dead end, fall back to one broader
// query, and only then give up with an explicit "no clear gap" result.
type Resolver struct {
	search Searcher
	gen    querygen.Generator
}

// NewResolver creates a Resolver. gen may be nil when callers supply
// their own query; the broader-query fallback is then skipped.
func NewResolver(search Searcher, gen querygen.Generator) *Resolver {
	return &Resolver{search: search, gen: gen}
}

// evaluation is one query variant's raw outcome.
type evaluation struct {
	query      string
	results    []model.CandidatePlace
	subjectIdx int
	found      bool
	rank       int
}

// meaningfulLeaders reports whether the evaluation contains a genuine
// comparison: at least one chaser when the subject is #1, at least one
// business above it otherwise, in both cases discounting duplicate
// listings of the subject itself.
func meaningfulLeaders(subject model.Business, ev *evaluation) bool {
	var pool []model.CandidatePlace
	switch {
	case ev.rank == 1 && ev.found:
		pool = ev.results[1:]
	case ev.found:
		pool = ev.results[:ev.subjectIdx]
	default:
		pool = ev.results
	}

	for _, c := range pool {
		if c.ID != "" && c.ID == subject.PlaceID {
			continue
		}
		if fuzzyMatch(subject, c) {
			continue
		}
		return true
	}
	return false
}

// Resolve generates the subject's primary query and evaluates it. A
// query-generation failure is fatal; a subject without coordinates is
// skipped (logged, nil result, no error).
func (r *Resolver) Resolve(ctx context.Context, subject model.Business) (*Result, error) {
	if !subject.HasCoordinates() {
		zap.L().Warn("rank: subject has no coordinates, skipping", zap.String("subject", subject.PlaceID))
		return nil, nil
	}
	if r.gen == nil {
		return nil, eris.New("rank: no query generator configured")
	}

	query, err := r.gen.PrimaryQuery(ctx, subject)
	if err != nil {
		return nil, eris.Wrap(err, "rank: primary query generation")
	}
	return r.Evaluate(ctx, subject, query)
}

// Evaluate runs the state machine for a caller-supplied query.
func (r *Resolver) Evaluate(ctx context.Context, subject model.Business, query string) (*Result, error) {
	if !subject.HasCoordinates() {
		zap.L().Warn("rank: subject has no coordinates, skipping", zap.String("subject", subject.PlaceID))
		return nil, nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return r.broaderFallback(ctx, subject, nil, true)
	}

	primary := r.evaluateOnce(ctx, subject, query)
	if len(primary.results) == 0 {
		return r.broaderFallback(ctx, subject, primary, true)
	}
	if meaningfulLeaders(subject, primary) {
		return r.finish(ctx, subject, primary, primary.rank == 1), nil
	}

	// Loosening loop: carry the best non-#1 result even when it lacks
	// leaders, since a broader variant may never beat it. allNumberOne
	// stays true only while every variant that returned results kept
	// the subject at #1.
	allNumberOne := primary.rank == 1
	var best *evaluation
	broadest := primary
	current := query
	for attempt := 0; attempt < maxLoosenAttempts; attempt++ {
		current = loosenQuery(current, subject.Suburb, subject.City)
		if current == "" {
			break
		}

		ev := r.evaluateOnce(ctx, subject, current)
		if len(ev.results) == 0 {
			continue
		}
		broadest = ev

		if ev.rank != 1 {
			allNumberOne = false
			if meaningfulLeaders(subject, ev) {
				return r.finish(ctx, subject, ev, false), nil
			}
			best = ev
		}
	}

	if best != nil {
		return r.finish(ctx, subject, best, false), nil
	}
	if broadest.rank == 1 && meaningfulLeaders(subject, broadest) {
		return r.finish(ctx, subject, broadest, allNumberOne), nil
	}
	return r.broaderFallback(ctx, subject, broadest, allNumberOne)
}

// broaderFallback asks the generator for one structurally broader query
// and evaluates it once; if that too yields nothing meaningful, the
// terminal "no clear gap" result is returned. last carries the rank of
// the best earlier evaluation, if any; allNumberOne whether every
// earlier variant with results kept the subject at #1.
func (r *Resolver) broaderFallback(ctx context.Context, subject model.Business, last *evaluation, allNumberOne bool) (*Result, error) {
	fallbackQuery := ""
	fallbackRank := sentinelRank
	if last != nil {
		fallbackQuery = last.query
		if len(last.results) > 0 {
			fallbackRank = last.rank
		}
	}

	if r.gen == nil {
		return noClearGap(fallbackQuery, fallbackRank), nil
	}

	broader, err := r.gen.BroaderQuery(ctx, subject)
	if err != nil {
		return nil, eris.Wrap(err, "rank: broader query generation")
	}
	broader = strings.TrimSpace(broader)
	if broader == "" {
		return noClearGap(fallbackQuery, fallbackRank), nil
	}

	ev := r.evaluateOnce(ctx, subject, broader)
	if len(ev.results) > 0 {
		fallbackQuery, fallbackRank = ev.query, ev.rank
		if meaningfulLeaders(subject, ev) {
			return r.finish(ctx, subject, ev, ev.rank == 1 && allNumberOne), nil
		}
	}
	return noClearGap(fallbackQuery, fallbackRank), nil
}

// evaluateOnce runs one text search and locates the subject in the
// ranked results. A search failure is a per-variant event: logged and
// treated as zero results so the loop can try other variants.
func (r *Resolver) evaluateOnce(ctx context.Context, subject model.Business, query string) *evaluation {
	results, err := r.search.TextSearch(ctx, query, *subject.Lat, *subject.Lng, searchRadiusMeters)
	if err != nil {
		zap.L().Warn("rank: text search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		results = nil
	}

	ev := &evaluation{query: query, results: results, subjectIdx: -1}
	for i, c := range results {
		if c.ID != "" && c.ID == subject.PlaceID {
			ev.subjectIdx = i
			break
		}
	}
	if ev.subjectIdx < 0 {
		// Fuzzy fallback: first result in rank order that looks and
		// sits like the subject wins.
		for i, c := range results {
			if fuzzyMatch(subject, c) {
				ev.subjectIdx = i
				break
			}
		}
	}

	if ev.subjectIdx >= 0 {
		ev.found = true
		ev.rank = ev.subjectIdx + 1
	} else {
		ev.rank = len(results) + 1
	}
	return ev
}

// fuzzyMatch reports whether a result plausibly is the subject: name
// containment in either direction plus coordinates within 100 m.
func fuzzyMatch(subject model.Business, c model.CandidatePlace) bool {
	sn := strings.ToLower(strings.TrimSpace(subject.Name))
	cn := strings.ToLower(strings.TrimSpace(c.Name))
	if sn == "" || cn == "" {
		return false
	}
	if !strings.Contains(sn, cn) && !strings.Contains(cn, sn) {
		return false
	}
	dist, ok := geo.DistanceMeters(subject.Lat, subject.Lng, c.Lat, c.Lng)
	return ok && dist < fuzzyMatchMaxMeters
}

// finish shapes an evaluation into the final result: leader extraction,
// heading, photo backfill.
func (r *Resolver) finish(ctx context.Context, subject model.Business, ev *evaluation, stillNumberOne bool) *Result {
	res := &Result{
		Query:          ev.query,
		Rank:           ev.rank,
		StillNumberOne: stillNumberOne,
	}

	switch {
	case ev.rank == 1:
		res.IsChasers = true
		res.Leaders = r.buildLeaders(ctx, subject, ev.results[1:], 2)
		res.Heading = "You're #1 - here's who's chasing you"
	case ev.found:
		res.Leaders = r.buildLeaders(ctx, subject, ev.results[:ev.subjectIdx], 1)
		res.Heading = fmt.Sprintf("%d businesses rank ahead of you", ev.rank-1)
	default:
		res.Leaders = r.buildLeaders(ctx, subject, ev.results, 1)
		res.Heading = fmt.Sprintf("You're ranked %d+ for this search", ev.rank)
	}
	return res
}

func (r *Resolver) buildLeaders(ctx context.Context, subject model.Business, places []model.CandidatePlace, startRank int) []Leader {
	if len(places) > maxLeaders {
		places = places[:maxLeaders]
	}

	leaders := make([]Leader, 0, len(places))
	for i, p := range places {
		l := Leader{
			PlaceID: p.ID,
			Name:    p.Name,
			Rank:    startRank + i,
			Rating:  p.Rating,
			Reviews: p.ReviewCount,
			Photos:  p.Photos,
		}
		if dist, ok := geo.DistanceMeters(subject.Lat, subject.Lng, p.Lat, p.Lng); ok {
			l.DistanceM = int(math.Round(dist))
		}
		leaders = append(leaders, l)
	}

	r.backfillPhotos(ctx, leaders)
	return leaders
}

// backfillPhotos fetches details for leaders the text search
// under-served with photos. Failures are per-leader and non-fatal.
func (r *Resolver) backfillPhotos(ctx context.Context, leaders []Leader) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i := range leaders {
		if leaders[i].PlaceID == "" || len(leaders[i].Photos) >= minPhotos {
			continue
		}
		g.Go(func() error {
			photos, err := r.search.Details(ctx, leaders[i].PlaceID)
			if err != nil {
				zap.L().Debug("rank: photo backfill failed",
					zap.String("place_id", leaders[i].PlaceID),
					zap.Error(err),
				)
				return nil
			}
			if len(photos) > 0 {
				leaders[i].Photos = photos
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck
}

// noClearGap is the terminal "nothing is clearly outranking you" state.
func noClearGap(query string, rank int) *Result {
	return &Result{
		Query:   query,
		Rank:    rank,
		Leaders: []Leader{},
		Heading: headingNoClearGap,
	}
}
