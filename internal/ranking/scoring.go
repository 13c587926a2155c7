// Package ranking scores documents against a job description and ranks them.
package ranking

import (
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/textproc"
	"github.com/jonathan/resume-screener/internal/types"
)

// Scoring constants. The blend favours skill alignment and the boost lets a
// strong skill match reach the top of the range; both are tuned heuristics.
const (
	keywordWeight = 0.3
	skillWeight   = 0.7
	scoreBoost    = 1.2

	// KeywordLimit is how many top keywords of each text enter the Jaccard comparison.
	KeywordLimit = 50
)

// Scorer computes similarity between a document and a job description.
// It holds only immutable collaborators and is safe for concurrent use.
type Scorer struct {
	normalizer *textproc.Normalizer
	taxonomy   *skills.Taxonomy
}

// NewScorer creates a Scorer. Nil arguments fall back to the process defaults.
func NewScorer(normalizer *textproc.Normalizer, taxonomy *skills.Taxonomy) *Scorer {
	if normalizer == nil {
		normalizer = textproc.Default()
	}
	if taxonomy == nil {
		taxonomy = skills.Default()
	}
	return &Scorer{normalizer: normalizer, taxonomy: taxonomy}
}

// Taxonomy returns the taxonomy the scorer matches skills against.
func (s *Scorer) Taxonomy() *skills.Taxonomy {
	return s.taxonomy
}

// Score computes the bounded similarity of resumeText to jdText, with skill gaps.
func (s *Scorer) Score(resumeText, jdText string) types.SimilarityResult {
	return s.ScoreAgainst(resumeText, s.PrepareQuery(jdText))
}

// SkillGaps returns, per JD category, the JD skills missing from the resume.
func (s *Scorer) SkillGaps(resumeText, jdText string) map[string][]string {
	resumeSkills := s.taxonomy.ExtractSkills(resumeText)
	jdSkills := s.taxonomy.ExtractSkills(jdText)
	return computeSkillGaps(resumeSkills, jdSkills)
}

// KeywordSimilarity returns the Jaccard similarity of the top keywords of two texts.
func (s *Scorer) KeywordSimilarity(a, b string) float64 {
	return Jaccard(s.keywords(a), s.keywords(b))
}

// Query is a job description with its keywords and skills extracted once,
// so it can be scored against many documents.
type Query struct {
	Text     string
	Keywords []string
	Skills   types.SkillSet
}

// PrepareQuery extracts keywords and skills from a job description.
func (s *Scorer) PrepareQuery(jdText string) *Query {
	return &Query{
		Text:     jdText,
		Keywords: s.keywords(jdText),
		Skills:   s.taxonomy.ExtractSkills(jdText),
	}
}

// ScoreAgainst scores resumeText against a prepared query.
func (s *Scorer) ScoreAgainst(resumeText string, q *Query) types.SimilarityResult {
	keywordSim := Jaccard(s.keywords(resumeText), q.Keywords)

	resumeSkills := s.taxonomy.ExtractSkills(resumeText)
	skillScore, matched := computeSkillScore(resumeSkills, q.Skills)

	gaps := computeSkillGaps(resumeSkills, q.Skills)

	return types.SimilarityResult{
		Score:              combine(keywordSim, skillScore),
		KeywordSimilarity:  keywordSim,
		SkillScore:         skillScore,
		MatchedSkills:      matched,
		SkillGaps:          gaps,
		MissingSkillsCount: countSkills(gaps),
	}
}

func (s *Scorer) keywords(text string) []string {
	return s.normalizer.ExtractKeywords(s.normalizer.Clean(text), KeywordLimit)
}

// combine blends the two signals, applies the boost and clamps to [0, 1].
func combine(keywordSim, skillScore float64) float64 {
	score := (keywordWeight*keywordSim + skillWeight*skillScore) * scoreBoost
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// Jaccard returns |A∩B| / |A∪B| over the distinct elements of a and b, or 0
// when both are empty.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, x := range a {
		setA[x] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, x := range b {
		setB[x] = struct{}{}
	}

	intersection := 0
	for x := range setA {
		if _, ok := setB[x]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// computeSkillScore returns the fraction of JD skills found in the resume and
// the matched skills per category. Zero when the JD has no skills.
func computeSkillScore(resumeSkills, jdSkills types.SkillSet) (float64, types.SkillSet) {
	total := jdSkills.Count()
	matched := types.SkillSet{}
	if total == 0 {
		return 0.0, matched
	}

	hits := 0
	for category, wanted := range jdSkills {
		for _, skill := range wanted {
			if resumeSkills.Contains(category, skill) {
				matched[category] = append(matched[category], skill)
				hits++
			}
		}
	}

	return float64(hits) / float64(total), matched
}

// computeSkillGaps lists JD skills absent from the resume, per category.
// A category the resume lacks entirely contributes its full JD list.
func computeSkillGaps(resumeSkills, jdSkills types.SkillSet) map[string][]string {
	gaps := make(map[string][]string)
	for category, wanted := range jdSkills {
		var missing []string
		for _, skill := range wanted {
			if !resumeSkills.Contains(category, skill) {
				missing = append(missing, skill)
			}
		}
		if len(missing) > 0 {
			gaps[category] = missing
		}
	}
	return gaps
}

func countSkills(m map[string][]string) int {
	return types.SkillSet(m).Count()
}
