package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch(t *testing.T) {
	var gotPath, gotKey, gotMask string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[
			{"id":"pl_1","displayName":{"text":"First Cafe"},"location":{"latitude":1.0,"longitude":2.0},
			 "rating":4.6,"userRatingCount":310,"types":["cafe"],"businessStatus":"OPERATIONAL",
			 "photos":[{"name":"places/pl_1/photos/a"}]},
			{"id":"pl_2","displayName":{"text":"Second Cafe"},"rating":4.1,"userRatingCount":80}
		]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.TextSearch(context.Background(), TextSearchRequest{
		Query: "best coffee newtown", Lat: 1.0, Lng: 2.0, RadiusMeters: 10000,
	})
	require.NoError(t, err)

	assert.Equal(t, "/places:searchText", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotMask, "places.businessStatus")
	assert.Equal(t, "best coffee newtown", gotBody["textQuery"])

	// Order must be preserved: it is the search ranking.
	require.Len(t, resp.Places, 2)
	assert.Equal(t, "pl_1", resp.Places[0].ID)
	assert.Equal(t, "First Cafe", resp.Places[0].DisplayName.Text)
	assert.Equal(t, 4.6, resp.Places[0].Rating)
	assert.Equal(t, []string{"cafe"}, resp.Places[0].Types)
	assert.Equal(t, "pl_2", resp.Places[1].ID)
}

func TestTextSearch_EmptyQuery(t *testing.T) {
	c := NewClient("test-key")
	_, err := c.TextSearch(context.Background(), TextSearchRequest{})
	assert.Error(t, err)
}

func TestNearby_SendsCircleBias(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"places":[]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Nearby(context.Background(), NearbyRequest{
		Keyword: "coffee shop", Lat: -33.89, Lng: 151.18, RadiusMeters: 6000,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Places)

	assert.Equal(t, "coffee shop", gotBody["textQuery"])
	bias := gotBody["locationBias"].(map[string]any)["circle"].(map[string]any)
	assert.Equal(t, 6000.0, bias["radius"])
}

func TestDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places/pl_9", r.URL.Path)
		assert.Equal(t, "id,photos", r.Header.Get("X-Goog-FieldMask"))
		_, _ = w.Write([]byte(`{"id":"pl_9","photos":[{"name":"p1"},{"name":"p2"}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	det, err := c.Details(context.Background(), "pl_9")
	require.NoError(t, err)
	require.Len(t, det.Photos, 2)
	assert.Equal(t, "p1", det.Photos[0].Name)
}

func TestErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"key invalid"}`))
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Details(context.Background(), "pl_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "key invalid")
}
