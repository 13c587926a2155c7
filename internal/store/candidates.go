package store

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
)

// FormatMissingSkills flattens skill gaps to "cat: a, b, cat2: c" with
// categories in taxonomy order.
func FormatMissingSkills(gaps map[string][]string) string {
	parts := make([]string, 0, len(gaps))
	for _, category := range skills.Default().OrderedCategories(gaps) {
		missing := gaps[category]
		if len(missing) == 0 {
			continue
		}
		parts = append(parts, category+": "+strings.Join(missing, ", "))
	}
	return strings.Join(parts, ", ")
}

// FromRanked builds an applicant record from a ranked candidate. Skills are
// every taxonomy skill in the resume, not only those the job asked for. A nil
// taxonomy uses the built-in one. Contact fields are left for the caller.
func FromRanked(c types.RankedCandidate, resumeText string, taxonomy *skills.Taxonomy) Applicant {
	if taxonomy == nil {
		taxonomy = skills.Default()
	}
	return Applicant{
		Name:          c.ID,
		ResumeText:    resumeText,
		Category:      c.Category,
		Score:         c.Score,
		MissingSkills: FormatMissingSkills(c.SkillGaps),
		Skills:        taxonomy.ExtractSkills(resumeText),
	}
}

// skillRows flattens a skill map into (category, skill) pairs in a stable order.
func skillRows(set map[string][]string) [][2]string {
	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var rows [][2]string
	for _, c := range categories {
		for _, s := range set[c] {
			rows = append(rows, [2]string{c, s})
		}
	}
	return rows
}
