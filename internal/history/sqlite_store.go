package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/laittg/chainable/pkg/api"
)

// SQLiteStore is a RunStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements api.RunStore.
var _ api.RunStore = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database
// and returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			chain TEXT NOT NULL,
			status TEXT NOT NULL,
			tasks INTEGER NOT NULL,
			results BLOB,
			error TEXT,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveRun(rec *api.RunRecord) error {
	results, err := encodeResults(rec.Results)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, chain, status, tasks, results, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Chain,
		string(rec.Status),
		rec.Tasks,
		results,
		rec.Error,
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*api.RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, chain, status, tasks, results, error, started_at, finished_at
		FROM runs
		WHERE id = ?`,
		id,
	)

	rec, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.ErrRunNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListRuns(filter api.RunFilter) ([]*api.RunRecord, error) {
	query := `
		SELECT id, chain, status, tasks, results, error, started_at, finished_at
		FROM runs`
	var args []any
	var clauses []string

	if filter.Chain != "" {
		clauses = append(clauses, "chain = ?")
		args = append(args, filter.Chain)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}

	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}
	query = query + " ORDER BY started_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*api.RunRecord

	for rows.Next() {
		rec, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func scanRun(scan func(dest ...any) error) (*api.RunRecord, error) {
	var rec api.RunRecord
	var statusStr string
	var results []byte
	var errStr sql.NullString
	var startedNs, finishedNs int64

	if err := scan(&rec.ID, &rec.Chain, &statusStr, &rec.Tasks, &results, &errStr, &startedNs, &finishedNs); err != nil {
		return nil, err
	}

	rec.Status = api.Status(statusStr)
	rec.StartedAt = time.Unix(0, startedNs)
	rec.FinishedAt = time.Unix(0, finishedNs)

	decoded, err := decodeResults(results)
	if err != nil {
		return nil, err
	}
	rec.Results = decoded

	if errStr.Valid {
		rec.Error = errStr.String
	}

	return &rec, nil
}
