package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"arch4u/internal/shared/util"
)

const driverName = "sqlite"

// RunSummary is what gets persisted per analysis run.
type RunSummary struct {
	RunID       string
	Timestamp   time.Time
	Files       int
	Units       int
	ParseErrors int
	Violations  int
	Duration    time.Duration
	ByRule      map[string]int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) SaveRun(summary RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if summary.RunID == "" {
		return fmt.Errorf("run summary missing run id")
	}
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, ts_utc, schema_version, file_count, unit_count, parse_error_count, violation_count, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		summary.Timestamp.UTC().Format(time.RFC3339Nano),
		SchemaVersion,
		summary.Files,
		summary.Units,
		summary.ParseErrors,
		summary.Violations,
		summary.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", summary.RunID, err)
	}

	for _, rule := range util.SortedStringKeys(summary.ByRule) {
		if _, err := tx.Exec(
			`INSERT INTO run_rules (run_id, rule, violation_count) VALUES (?, ?, ?)`,
			summary.RunID, rule, summary.ByRule[rule],
		); err != nil {
			return fmt.Errorf("insert run rule %s/%s: %w", summary.RunID, rule, err)
		}
	}

	return tx.Commit()
}

// RecentRuns lists run summaries newest first, without per-rule breakdowns.
func (s *Store) RecentRuns(limit int) ([]RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT run_id, ts_utc, file_count, unit_count, parse_error_count, violation_count, duration_ms
		 FROM runs ORDER BY ts_utc DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var summary RunSummary
		var ts string
		var durationMs int64
		if err := rows.Scan(&summary.RunID, &ts, &summary.Files, &summary.Units,
			&summary.ParseErrors, &summary.Violations, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			summary.Timestamp = parsed
		}
		summary.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, summary)
	}
	return out, rows.Err()
}
