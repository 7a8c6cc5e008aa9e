package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSubjectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subject.json")
	payload := `{
		"subject": {
			"place_id": "p-123",
			"name": "Origin Coffee",
			"lat": -33.89,
			"lng": 151.18,
			"primary_category": "coffee shop",
			"rating": 4.2,
			"review_count": 130
		},
		"snapshot": {"rating": 4.3, "review_count": 150}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	in, err := readSubjectFile(path)
	require.NoError(t, err)

	assert.Equal(t, "p-123", in.Subject.PlaceID)
	assert.Equal(t, "Origin Coffee", in.Subject.Name)
	require.NotNil(t, in.Subject.Lat)
	assert.InDelta(t, -33.89, *in.Subject.Lat, 1e-9)
	require.NotNil(t, in.Snapshot)
	assert.Equal(t, 150, in.Snapshot.ReviewCount)
}

func TestReadSubjectFile_MissingID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subject.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"subject": {"name": "No ID"}}`), 0644))

	_, err := readSubjectFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "place_id is required")
}

func TestReadSubjectFile_NotFound(t *testing.T) {
	_, err := readSubjectFile("/nonexistent/subject.json")
	assert.Error(t, err)
}
