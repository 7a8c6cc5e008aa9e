package competitor

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/ibrhmmrana/hunter2.0-sub001/internal/db"
)

// Store persists competitor sets. Replace is atomic: the subject's
// previous set is gone if and only if the new one is in.
type Store interface {
	Replace(ctx context.Context, subjectID string, records []Record) error
	BySubject(ctx context.Context, subjectID string) ([]Record, error)
}

var competitorColumns = []string{
	"subject_place_id", "run_id", "place_id", "name",
	"rating", "review_count", "distance_m", "is_stronger", "tier", "raw",
}

// PostgresStore persists competitor sets in PostgreSQL.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgresStore creates a PostgresStore over an open pool.
func NewPostgresStore(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the competitors table if needed.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS competitors (
			subject_place_id TEXT NOT NULL,
			run_id           TEXT NOT NULL,
			place_id         TEXT NOT NULL,
			name             TEXT NOT NULL,
			rating           DOUBLE PRECISION NOT NULL,
			review_count     INTEGER NOT NULL,
			distance_m       INTEGER NOT NULL,
			is_stronger      BOOLEAN NOT NULL,
			tier             INTEGER NOT NULL,
			raw              JSONB,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (subject_place_id, place_id)
		)`)
	if err != nil {
		return eris.Wrap(err, "competitor: migrate")
	}
	return nil
}

// Replace swaps the subject's competitor set inside one transaction:
// delete the old rows, COPY in the new ones.
func (s *PostgresStore) Replace(ctx context.Context, subjectID string, records []Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "competitor: begin replace")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM competitors WHERE subject_place_id = $1`, subjectID); err != nil {
		return eris.Wrap(err, "competitor: delete previous set")
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		raw, err := json.Marshal(r.Raw)
		if err != nil {
			return eris.Wrap(err, "competitor: marshal raw payload")
		}
		rows = append(rows, []any{
			r.SubjectID, r.RunID, r.PlaceID, r.Name,
			r.Rating, r.Reviews, r.DistanceM, r.IsStronger, int(r.Tier), raw,
		})
	}

	if _, err := db.CopyInto(ctx, tx, "competitors", competitorColumns, rows); err != nil {
		return eris.Wrap(err, "competitor: copy new set")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "competitor: commit replace")
	}
	return nil
}

// BySubject returns the stored competitor set for a subject, in the
// order it was selected.
func (s *PostgresStore) BySubject(ctx context.Context, subjectID string) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT subject_place_id, run_id, place_id, name,
		       rating, review_count, distance_m, is_stronger, tier, raw
		FROM competitors
		WHERE subject_place_id = $1
		ORDER BY rating DESC, review_count DESC, distance_m ASC`, subjectID)
	if err != nil {
		return nil, eris.Wrap(err, "competitor: query by subject")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var tier int
		var raw []byte
		if err := rows.Scan(&r.SubjectID, &r.RunID, &r.PlaceID, &r.Name,
			&r.Rating, &r.Reviews, &r.DistanceM, &r.IsStronger, &tier, &raw); err != nil {
			return nil, eris.Wrap(err, "competitor: scan row")
		}
		r.Tier = Tier(tier)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &r.Raw); err != nil {
				return nil, eris.Wrap(err, "competitor: decode raw payload")
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "competitor: iterate rows")
	}
	return out, nil
}
