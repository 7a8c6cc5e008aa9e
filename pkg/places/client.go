// Package places is a thin client for the Google Places API (v1), the
// engine's candidate source for nearby search, text search, and photo
// detail lookups.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs Google Places API operations.
type Client interface {
	// TextSearch runs a ranked text search biased to a point. Result
	// order is the search-results ranking and must be preserved.
	TextSearch(ctx context.Context, req TextSearchRequest) (*SearchResponse, error)
	// Nearby runs a keyword search restricted to a circle around a point.
	Nearby(ctx context.Context, req NearbyRequest) (*SearchResponse, error)
	// Details fetches a place's photo references.
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// TextSearchRequest describes a ranked text search near a point.
type TextSearchRequest struct {
	Query        string
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// NearbyRequest describes a keyword search within a radius of a point.
type NearbyRequest struct {
	Keyword      string
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// SearchResponse is the response from a search call.
type SearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API.
type Place struct {
	ID              string      `json:"id"`
	DisplayName     DisplayName `json:"displayName"`
	Location        LatLng      `json:"location"`
	Rating          float64     `json:"rating"`
	UserRatingCount int         `json:"userRatingCount"`
	Types           []string    `json:"types"`
	BusinessStatus  string      `json:"businessStatus"`
	Photos          []Photo     `json:"photos"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo is a photo resource reference.
type Photo struct {
	Name string `json:"name"`
}

// PlaceDetails holds the detail fields the engine backfills.
type PlaceDetails struct {
	ID     string  `json:"id"`
	Photos []Photo `json:"photos"`
}

// searchFieldMask lists the place fields every search requests.
const searchFieldMask = "places.id,places.displayName,places.location," +
	"places.rating,places.userRatingCount,places.types," +
	"places.businessStatus,places.photos"

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type textSearchRequest struct {
	TextQuery    string        `json:"textQuery"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
}

func (c *httpClient) TextSearch(ctx context.Context, req TextSearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, eris.New("places: text search query is empty")
	}

	payload := textSearchRequest{
		TextQuery: req.Query,
		LocationBias: &locationBias{
			Circle: circle{
				Center: LatLng{Latitude: req.Lat, Longitude: req.Lng},
				Radius: req.RadiusMeters,
			},
		},
	}

	var result SearchResponse
	if err := c.post(ctx, "/places:searchText", searchFieldMask, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Nearby(ctx context.Context, req NearbyRequest) (*SearchResponse, error) {
	if req.Keyword == "" {
		return nil, eris.New("places: nearby keyword is empty")
	}

	// v1 searchNearby has no keyword parameter; a keyword search
	// restricted to a circle is expressed as a text search.
	payload := textSearchRequest{
		TextQuery: req.Keyword,
		LocationBias: &locationBias{
			Circle: circle{
				Center: LatLng{Latitude: req.Lat, Longitude: req.Lng},
				Radius: req.RadiusMeters,
			},
		},
	}

	var result SearchResponse
	if err := c.post(ctx, "/places:searchText", searchFieldMask, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if placeID == "" {
		return nil, eris.New("places: place id is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/places/%s", c.baseURL, placeID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "id,photos")

	var result PlaceDetails
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends a JSON POST to path with the standard headers and decodes
// the response into out.
func (c *httpClient) post(ctx context.Context, path, fieldMask string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
