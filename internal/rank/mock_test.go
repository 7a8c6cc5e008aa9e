package rank

import (
	"context"
	"sync"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/model"
)

// mockSearcher serves canned results per query and records the call
// order. Details calls run concurrently, so bookkeeping is locked.
type mockSearcher struct {
	mu        sync.Mutex
	responses map[string][]model.CandidatePlace
	errs      map[string]error
	photos    map[string][]string
	photoErrs map[string]error

	queries     []string
	detailCalls []string
}

func (m *mockSearcher) TextSearch(_ context.Context, query string, _, _, _ float64) ([]model.CandidatePlace, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if err, ok := m.errs[query]; ok {
		return nil, err
	}
	return m.responses[query], nil
}

func (m *mockSearcher) Details(_ context.Context, placeID string) ([]string, error) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, placeID)
	m.mu.Unlock()

	if err, ok := m.photoErrs[placeID]; ok {
		return nil, err
	}
	return m.photos[placeID], nil
}

// mockGenerator returns fixed primary and broader queries.
type mockGenerator struct {
	primary    string
	primaryErr error
	broader    string
	broaderErr error

	primaryCalls int
	broaderCalls int
}

func (m *mockGenerator) PrimaryQuery(context.Context, model.Business) (string, error) {
	m.primaryCalls++
	return m.primary, m.primaryErr
}

func (m *mockGenerator) BroaderQuery(context.Context, model.Business) (string, error) {
	m.broaderCalls++
	return m.broader, m.broaderErr
}
