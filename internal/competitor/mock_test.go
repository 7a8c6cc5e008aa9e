package competitor

import (
	"context"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

// mockSource returns a canned candidate list and records the call.
type mockSource struct {
	candidates []model.CandidatePlace
	err        error

	gotLat     float64
	gotLng     float64
	gotRadius  float64
	gotKeyword string
	calls      int
}

func (m *mockSource) Nearby(_ context.Context, lat, lng, radiusMeters float64, keyword string) ([]model.CandidatePlace, error) {
	m.calls++
	m.gotLat, m.gotLng, m.gotRadius, m.gotKeyword = lat, lng, radiusMeters, keyword
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

// mockStore captures the replaced set.
type mockStore struct {
	err error

	gotSubject string
	gotRecords []Record
	replaces   int
}

func (m *mockStore) Replace(_ context.Context, subjectID string, records []Record) error {
	m.replaces++
	m.gotSubject = subjectID
	m.gotRecords = records
	return m.err
}

func (m *mockStore) BySubject(_ context.Context, subjectID string) ([]Record, error) {
	if subjectID == m.gotSubject {
		return m.gotRecords, nil
	}
	return nil, nil
}
