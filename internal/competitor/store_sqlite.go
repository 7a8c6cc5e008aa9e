package competitor

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// single-machine runs; the PostgreSQL store backs the server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	subject_place_id TEXT NOT NULL,
	run_id           TEXT NOT NULL,
	place_id         TEXT NOT NULL,
	name             TEXT NOT NULL,
	rating           REAL NOT NULL,
	review_count     INTEGER NOT NULL,
	distance_m       INTEGER NOT NULL,
	is_stronger      INTEGER NOT NULL,
	tier             INTEGER NOT NULL,
	raw              TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (subject_place_id, place_id)
);

CREATE INDEX IF NOT EXISTS idx_competitors_run_id ON competitors(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Replace swaps the subject's competitor set inside one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, subjectID string, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM competitors WHERE subject_place_id = ?`, subjectID); err != nil {
		return eris.Wrap(err, "sqlite: delete previous set")
	}

	const insert = `
		INSERT INTO competitors
			(subject_place_id, run_id, place_id, name, rating, review_count, distance_m, is_stronger, tier, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, r := range records {
		raw, err := json.Marshal(r.Raw)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal raw payload")
		}
		if _, err := tx.ExecContext(ctx, insert,
			r.SubjectID, r.RunID, r.PlaceID, r.Name,
			r.Rating, r.Reviews, r.DistanceM, r.IsStronger, int(r.Tier), string(raw),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert competitor %s", r.PlaceID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit replace")
	}
	return nil
}

// BySubject returns the stored competitor set for a subject.
func (s *SQLiteStore) BySubject(ctx context.Context, subjectID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_place_id, run_id, place_id, name,
		       rating, review_count, distance_m, is_stronger, tier, raw
		FROM competitors
		WHERE subject_place_id = ?
		ORDER BY rating DESC, review_count DESC, distance_m ASC`, subjectID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query by subject")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var tier int
		var raw sql.NullString
		if err := rows.Scan(&r.SubjectID, &r.RunID, &r.PlaceID, &r.Name,
			&r.Rating, &r.Reviews, &r.DistanceM, &r.IsStronger, &tier, &raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		r.Tier = Tier(tier)
		if raw.Valid && raw.String != "" {
			if err := json.Unmarshal([]byte(raw.String), &r.Raw); err != nil {
				return nil, eris.Wrap(err, "sqlite: decode raw payload")
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return out, nil
}
