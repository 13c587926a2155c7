package types

// UnknownCategory is reported when no category could be determined for a document.
const UnknownCategory = "Unknown"

// SimilarityResult is the outcome of scoring one document against one job description.
type SimilarityResult struct {
	Score              float64             `json:"score"`                // 0-1 combined score
	KeywordSimilarity  float64             `json:"keyword_similarity"`   // Jaccard over top keywords
	SkillScore         float64             `json:"skill_score"`          // Fraction of JD skills present
	MatchedSkills      SkillSet            `json:"matched_skills"`       // JD skills found in the document
	SkillGaps          map[string][]string `json:"skill_gaps"`           // JD skills missing from the document
	MissingSkillsCount int                 `json:"missing_skills_count"` // Total across SkillGaps
}

// RankedCandidates is the ordered output of ranking a document set.
type RankedCandidates struct {
	Total    int                `json:"total"` // Candidates ranked before truncation
	Ranked   []RankedCandidate  `json:"ranked"`
	Excluded []ExcludedDocument `json:"excluded,omitempty"`
}

// RankedCandidate is a single document with its rank and score breakdown.
type RankedCandidate struct {
	Rank               int                 `json:"rank"`
	ID                 string              `json:"id"`
	Score              float64             `json:"score"`
	SkillGaps          map[string][]string `json:"skill_gaps"`
	MissingSkillsCount int                 `json:"missing_skills_count"`
	Category           string              `json:"category"`
	// CategoryConfidence is the classifier confidence, zero when the category was supplied or unknown
	CategoryConfidence float64  `json:"category_confidence,omitempty"`
	KeywordSimilarity  float64  `json:"keyword_similarity"`
	SkillScore         float64  `json:"skill_score"`
	MatchedSkills      SkillSet `json:"matched_skills,omitempty"`
	Band               string   `json:"band"`
}

// ExcludedDocument records a document left out of a ranking and why.
type ExcludedDocument struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Score bands used for reporting.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandAverage   = "average"
	BandPoor      = "poor"
)

// ScoreBand buckets a score for display.
func ScoreBand(score float64) string {
	switch {
	case score >= 0.8:
		return BandExcellent
	case score >= 0.6:
		return BandGood
	case score >= 0.4:
		return BandAverage
	default:
		return BandPoor
	}
}
