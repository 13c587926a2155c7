package store

import (
	"testing"

	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMissingSkills(t *testing.T) {
	gaps := map[string][]string{
		"cloud":       {"docker", "kubernetes"},
		"programming": {"go"},
		"empty":       nil,
	}
	assert.Equal(t, "programming: go, cloud: docker, kubernetes", FormatMissingSkills(gaps))
	assert.Equal(t, "", FormatMissingSkills(nil))
}

func TestFromRanked(t *testing.T) {
	c := types.RankedCandidate{
		Rank:          1,
		ID:            "ada.txt",
		Score:         0.7,
		SkillGaps:     map[string][]string{"cloud": {"aws"}},
		Category:      "ENGINEERING",
		MatchedSkills: types.SkillSet{"programming": {"python"}},
	}

	a := FromRanked(c, "Python developer", nil)
	assert.Equal(t, "ada.txt", a.Name)
	assert.Equal(t, "Python developer", a.ResumeText)
	assert.Equal(t, 0.7, a.Score)
	assert.Equal(t, "ENGINEERING", a.Category)
	assert.Equal(t, "cloud: aws", a.MissingSkills)
	assert.Equal(t, map[string][]string{"programming": {"python"}}, a.Skills)
}

func TestFromRanked_StoresEveryResumeSkill(t *testing.T) {
	// Matches against the job "Python developer with Docker".
	resume := "Python and Java developer, Git, Docker"
	c := types.RankedCandidate{
		ID:            "dev.txt",
		MatchedSkills: types.SkillSet{"programming": {"python"}, "cloud": {"docker"}},
	}
	a := FromRanked(c, resume, nil)

	assert.Contains(t, a.Skills["programming"], "python")
	assert.Contains(t, a.Skills["programming"], "java")
	assert.Equal(t, []string{"git"}, a.Skills["tools"])
	assert.Equal(t, []string{"docker"}, a.Skills["cloud"])
}

func TestFromRanked_CustomTaxonomy(t *testing.T) {
	taxonomy, err := skills.ParseTaxonomy([]byte(`
version: 1
categories:
  - name: finance
    skills: [ledger, audit]
`))
	require.NoError(t, err)

	a := FromRanked(types.RankedCandidate{ID: "bob"}, "Ledger reconciliation and Python", taxonomy)
	assert.Equal(t, map[string][]string{"finance": {"ledger"}}, a.Skills)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%a\%b\_c\\%`, likePattern(`a%b_c\`))
}
