// Package source adapts the Places client into the candidate-source
// capabilities the selection and ranking engines consume, with a shared
// rate limit across all calls.
package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
	"github.com/ibrhmmrana/hunter2.0-sub001/pkg/places"
)

// Source wraps a places.Client behind a rate limiter.
type Source struct {
	client  places.Client
	limiter *rate.Limiter
}

// New creates a Source. ratePerSecond bounds outbound Places calls
// across nearby, text search, and details combined.
func New(client places.Client, ratePerSecond float64) *Source {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &Source{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Nearby returns candidate places for a keyword around a point.
func (s *Source) Nearby(ctx context.Context, lat, lng, radiusMeters float64, keyword string) ([]model.CandidatePlace, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "source: rate limit wait")
	}

	resp, err := s.client.Nearby(ctx, places.NearbyRequest{
		Keyword:      keyword,
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radiusMeters,
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: nearby search")
	}
	return toCandidates(resp.Places), nil
}

// TextSearch returns ranked results for a query biased to a point.
// Result order is preserved from the API.
func (s *Source) TextSearch(ctx context.Context, query string, lat, lng, radiusMeters float64) ([]model.CandidatePlace, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "source: rate limit wait")
	}

	resp, err := s.client.TextSearch(ctx, places.TextSearchRequest{
		Query:        query,
		Lat:          lat,
		Lng:          lng,
		RadiusMeters: radiusMeters,
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: text search")
	}
	return toCandidates(resp.Places), nil
}

// Details returns a place's photo references.
func (s *Source) Details(ctx context.Context, placeID string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "source: rate limit wait")
	}

	details, err := s.client.Details(ctx, placeID)
	if err != nil {
		return nil, eris.Wrap(err, "source: place details")
	}

	photos := make([]string, 0, len(details.Photos))
	for _, p := range details.Photos {
		photos = append(photos, p.Name)
	}
	return photos, nil
}

func toCandidates(in []places.Place) []model.CandidatePlace {
	out := make([]model.CandidatePlace, 0, len(in))
	for _, p := range in {
		lat, lng := p.Location.Latitude, p.Location.Longitude
		c := model.CandidatePlace{
			ID:             p.ID,
			Name:           p.DisplayName.Text,
			Lat:            &lat,
			Lng:            &lng,
			Rating:         p.Rating,
			ReviewCount:    p.UserRatingCount,
			Types:          p.Types,
			BusinessStatus: p.BusinessStatus,
		}
		for _, photo := range p.Photos {
			c.Photos = append(c.Photos, photo.Name)
		}
		out = append(out, c)
	}
	return out
}
