// Package store persists screened candidates in SQLite or PostgreSQL.
package store

import (
	"context"
	"strings"
	"time"
)

// Applicant is a stored candidate with the outcome of its latest screening.
type Applicant struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone,omitempty"`
	ResumeText    string              `json:"resume_text,omitempty"`
	FilePath      string              `json:"file_path,omitempty"`
	Category      string              `json:"category"`
	Score         float64             `json:"score"`
	MissingSkills string              `json:"missing_skills,omitempty"`
	Skills        map[string][]string `json:"skills,omitempty"`
	ProcessedAt   time.Time           `json:"processed_at"`
	AddedAt       time.Time           `json:"added_at"`
}

// CategoryStats aggregates applicants sharing a category.
type CategoryStats struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// Statistics summarizes the store contents.
type Statistics struct {
	TotalApplicants int             `json:"total_applicants"`
	AverageScore    float64         `json:"average_score"` // over applicants with a positive score
	Categories      []CategoryStats `json:"categories"`    // largest first
}

// ListOptions controls List.
type ListOptions struct {
	OrderByScore bool
	Limit        int // 0 means no limit
}

// Store is the candidate persistence contract shared by both backends.
type Store interface {
	// SaveCandidates inserts applicants and their skills in one transaction and
	// returns the assigned ids in input order.
	SaveCandidates(ctx context.Context, applicants []Applicant) ([]int64, error)
	// Get returns nil when no applicant has the id.
	Get(ctx context.Context, id int64) (*Applicant, error)
	List(ctx context.Context, opts ListOptions) ([]Applicant, error)
	// Search matches keyword against name, email and resume text, case-insensitively,
	// keeping applicants scoring at least minScore, best first.
	Search(ctx context.Context, keyword string, minScore float64) ([]Applicant, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Clear(ctx context.Context) error
	Statistics(ctx context.Context) (*Statistics, error)
	Close() error
}

// Open connects to the store named by url. postgres:// and postgresql:// URLs
// select PostgreSQL; anything else is a SQLite path, optionally prefixed with
// sqlite:// or file:.
func Open(ctx context.Context, url string) (Store, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return NewPostgres(ctx, url)
	}
	path := strings.TrimPrefix(url, "sqlite://")
	return NewSQLite(ctx, path)
}

// likePattern escapes LIKE wildcards in keyword and wraps it for a substring match.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

func normalizeApplicant(a *Applicant, now time.Time) {
	if a.Category == "" {
		a.Category = "Unknown"
	}
	if a.ProcessedAt.IsZero() {
		a.ProcessedAt = now
	}
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
