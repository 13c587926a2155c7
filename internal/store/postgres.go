package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS applicants (
	id             BIGSERIAL PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	resume_text    TEXT NOT NULL DEFAULT '',
	file_path      TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT 'Unknown',
	score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	missing_skills TEXT NOT NULL DEFAULT '',
	processed_at   TIMESTAMPTZ NOT NULL,
	added_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS skills (
	id             BIGSERIAL PRIMARY KEY,
	applicant_id   BIGINT NOT NULL REFERENCES applicants(id) ON DELETE CASCADE,
	skill_category TEXT NOT NULL,
	skill_name     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_skills_applicant ON skills(applicant_id);
CREATE INDEX IF NOT EXISTS idx_applicants_score ON applicants(score);
`

// PostgresStore is the shared multi-user backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool and ensures the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) SaveCandidates(ctx context.Context, applicants []Applicant) ([]int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	ids := make([]int64, 0, len(applicants))
	for i := range applicants {
		a := applicants[i]
		normalizeApplicant(&a, now)

		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO applicants (name, email, phone, resume_text, file_path, category, score, missing_skills, processed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			a.Name, a.Email, a.Phone, a.ResumeText, a.FilePath, a.Category, a.Score, a.MissingSkills, a.ProcessedAt,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert applicant %q: %w", a.Name, err)
		}

		rows := skillRows(a.Skills)
		if len(rows) > 0 {
			batch := &pgx.Batch{}
			for _, row := range rows {
				batch.Queue(`INSERT INTO skills (applicant_id, skill_category, skill_name) VALUES ($1, $2, $3)`,
					id, row[0], row[1])
			}
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return nil, fmt.Errorf("failed to insert skills for applicant %d: %w", id, err)
			}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit applicants: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*Applicant, error) {
	a, err := scanPostgresApplicant(s.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT skill_category, skill_name FROM skills WHERE applicant_id = $1 ORDER BY id`, id)
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

func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants`
	if opts.OrderByScore {
		query += ` ORDER BY score DESC, id ASC`
	} else {
		query += ` ORDER BY id ASC`
	}
	var args []any
	if opts.Limit > 0 {
		query += ` LIMIT $1`
		args = append(args, opts.Limit)
	}
	return s.queryApplicants(ctx, query, args...)
}

func (s *PostgresStore) Search(ctx context.Context, keyword string, minScore float64) ([]Applicant, error) {
	return s.queryApplicants(ctx,
		`SELECT `+applicantColumns+` FROM applicants
		 WHERE (name ILIKE $1 OR email ILIKE $1 OR resume_text ILIKE $1)
		   AND score >= $2
		 ORDER BY score DESC, id ASC`,
		likePattern(keyword), minScore,
	)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete applicant %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Clear removes every applicant and resets id sequences.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE skills, applicants RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

func (s *PostgresStore) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{Categories: []CategoryStats{}}

	var avg *float64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), (SELECT AVG(score) FROM applicants WHERE score > 0) FROM applicants`,
	).Scan(&stats.TotalApplicants, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize applicants: %w", err)
	}
	if avg != nil {
		stats.AverageScore = *avg
	}

	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) AS n, AVG(score) FROM applicants
		 GROUP BY category ORDER BY n DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to group categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryStats
		var catAvg *float64
		if err := rows.Scan(&c.Category, &c.Count, &catAvg); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		if catAvg != nil {
			c.AvgScore = *catAvg
		}
		stats.Categories = append(stats.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStore) queryApplicants(ctx context.Context, query string, args ...any) ([]Applicant, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query applicants: %w", err)
	}
	defer rows.Close()

	applicants := []Applicant{}
	for rows.Next() {
		a, err := scanPostgresApplicant(rows)
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

func scanPostgresApplicant(row pgx.Row) (*Applicant, error) {
	var a Applicant
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.ResumeText, &a.FilePath,
		&a.Category, &a.Score, &a.MissingSkills, &a.ProcessedAt, &a.AddedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
