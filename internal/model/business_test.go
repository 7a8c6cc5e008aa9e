package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestResolveBaseline(t *testing.T) {
	b := Business{Rating: 4.0, ReviewCount: 120}

	tests := []struct {
		name     string
		snapshot *Snapshot
		want     Baseline
	}{
		{"nil snapshot falls back to stored", nil, Baseline{Rating: 4.0, Reviews: 120}},
		{"snapshot preferred", &Snapshot{Rating: 4.3, ReviewCount: 150}, Baseline{Rating: 4.3, Reviews: 150}},
		{"empty snapshot ignored", &Snapshot{}, Baseline{Rating: 4.0, Reviews: 120}},
		{"snapshot with only reviews still wins", &Snapshot{ReviewCount: 10}, Baseline{Rating: 0, Reviews: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.ResolveBaseline(tt.snapshot))
		})
	}
}

func TestResolveBaseline_UnknownEverywhereIsZero(t *testing.T) {
	got := Business{}.ResolveBaseline(nil)
	assert.Equal(t, Baseline{}, got)
}

func TestHasCoordinates(t *testing.T) {
	assert.True(t, Business{Lat: f64(0), Lng: f64(0)}.HasCoordinates())
	assert.False(t, Business{Lat: f64(0)}.HasCoordinates())
	assert.False(t, Business{}.HasCoordinates())
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		name string
		b    Business
		want string
	}{
		{"primary wins", Business{PrimaryCategory: "Thai restaurant", SecondaryCategory: "bar"}, "Thai restaurant"},
		{"secondary next", Business{SecondaryCategory: "bar", Categories: []string{"pub"}}, "bar"},
		{"first list entry last", Business{Categories: []string{"pub", "grill"}}, "pub"},
		{"nothing", Business{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.CategoryLabel())
		})
	}
}

func TestOperational(t *testing.T) {
	assert.True(t, CandidatePlace{}.Operational())
	assert.True(t, CandidatePlace{BusinessStatus: "OPERATIONAL"}.Operational())
	assert.False(t, CandidatePlace{BusinessStatus: BusinessStatusClosed}.Operational())
}
