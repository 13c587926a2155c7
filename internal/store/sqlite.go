package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS applicants (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	resume_text    TEXT NOT NULL DEFAULT '',
	file_path      TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT 'Unknown',
	score          REAL NOT NULL DEFAULT 0,
	missing_skills TEXT NOT NULL DEFAULT '',
	processed_at   TEXT NOT NULL,
	added_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS skills (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	applicant_id   INTEGER NOT NULL REFERENCES applicants(id) ON DELETE CASCADE,
	skill_category TEXT NOT NULL,
	skill_name     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_skills_applicant ON skills(applicant_id);
CREATE INDEX IF NOT EXISTS idx_applicants_score ON applicants(score);
`

const applicantColumns = `id, name, email, phone, resume_text, file_path, category, score, missing_skills, processed_at, added_at`

// SQLiteStore is the default single-file backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; also keeps :memory: on one connection

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveCandidates(ctx context.Context, applicants []Applicant) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	ids := make([]int64, 0, len(applicants))
	for i := range applicants {
		a := applicants[i]
		normalizeApplicant(&a, now)

		res, err := tx.ExecContext(ctx,
			`INSERT INTO applicants (name, email, phone, resume_text, file_path, category, score, missing_skills, processed_at, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Email, a.Phone, a.ResumeText, a.FilePath, a.Category, a.Score, a.MissingSkills,
			formatTime(a.ProcessedAt), formatTime(now),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert applicant %q: %w", a.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read applicant id: %w", err)
		}

		for _, row := range skillRows(a.Skills) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO skills (applicant_id, skill_category, skill_name) VALUES (?, ?, ?)`,
				id, row[0], row[1],
			); err != nil {
				return nil, fmt.Errorf("failed to insert skill %s/%s: %w", row[0], row[1], err)
			}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit applicants: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Applicant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = ?`, id)
	a, err := scanSQLiteApplicant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_category, skill_name FROM skills WHERE applicant_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get skills for applicant %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, skill string
		if err := rows.Scan(&category, &skill); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		if a.Skills == nil {
			a.Skills = make(map[string][]string)
		}
		a.Skills[category] = append(a.Skills[category], skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read skills: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants`
	if opts.OrderByScore {
		query += ` ORDER BY score DESC, id ASC`
	} else {
		query += ` ORDER BY id ASC`
	}
	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	return s.queryApplicants(ctx, query, args...)
}

func (s *SQLiteStore) Search(ctx context.Context, keyword string, minScore float64) ([]Applicant, error) {
	pattern := likePattern(keyword)
	return s.queryApplicants(ctx,
		`SELECT `+applicantColumns+` FROM applicants
		 WHERE (name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR resume_text LIKE ? ESCAPE '\')
		   AND score >= ?
		 ORDER BY score DESC, id ASC`,
		pattern, pattern, pattern, minScore,
	)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applicants WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete applicant %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted rows: %w", err)
	}
	return n > 0, nil
}

// Clear removes every applicant and resets id sequences.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM skills`,
		`DELETE FROM applicants`,
		`DELETE FROM sqlite_sequence WHERE name IN ('applicants', 'skills')`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{Categories: []CategoryStats{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&stats.TotalApplicants); err != nil {
		return nil, fmt.Errorf("failed to count applicants: %w", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(score) FROM applicants WHERE score > 0`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to average scores: %w", err)
	}
	stats.AverageScore = avg.Float64

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS n, AVG(score) FROM applicants
		 GROUP BY category ORDER BY n DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to group categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryStats
		var catAvg sql.NullFloat64
		if err := rows.Scan(&c.Category, &c.Count, &catAvg); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		c.AvgScore = catAvg.Float64
		stats.Categories = append(stats.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category stats: %w", err)
	}
	return stats, nil
}

func (s *SQLiteStore) queryApplicants(ctx context.Context, query string, args ...any) ([]Applicant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicants: %w", err)
	}
	defer rows.Close()

	applicants := []Applicant{}
	for rows.Next() {
		a, err := scanSQLiteApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applicants: %w", err)
	}
	return applicants, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteApplicant(row rowScanner) (*Applicant, error) {
	var a Applicant
	var processed, added string
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.FilePath,
		&a.Category, &a.Score, &a.MissingSkills, &processed, &added); err != nil {
		return nil, err
	}
	var err error
	if a.ProcessedAt, err = parseTime(processed); err != nil {
		return nil, err
	}
	if a.AddedAt, err = parseTime(added); err != nil {
		return nil, err
	}
	return &a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
