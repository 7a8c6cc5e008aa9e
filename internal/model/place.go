package model

// BusinessStatusClosed is the operating-status value that marks a place
// as permanently out of business.
const BusinessStatusClosed = "CLOSED_PERMANENTLY"

// CandidatePlace is a place returned by the candidate source. Candidates
// are fetched fresh for every run and never persisted.
type CandidatePlace struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Lat            *float64 `json:"lat,omitempty"`
	Lng            *float64 `json:"lng,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	ReviewCount    int      `json:"review_count,omitempty"`
	Types          []string `json:"types,omitempty"`
	BusinessStatus string   `json:"business_status,omitempty"`
	Photos         []string `json:"photos,omitempty"`
}

// Operational reports whether the place is still operating. Places that
// do not declare a status are assumed operational.
func (p CandidatePlace) Operational() bool {
	return p.BusinessStatus != BusinessStatusClosed
}
