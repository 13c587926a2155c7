package ranking

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonJD = "Seeking a Python developer with AWS and Docker experience."

func TestScore_SkillGapScenario(t *testing.T) {
	scorer := NewScorer(nil, nil)

	resultA := scorer.Score("Experienced Python engineer, used AWS for deployments.", pythonJD)
	resultB := scorer.Score("Python, AWS, Docker, Kubernetes expert.", pythonJD)

	assert.Equal(t, map[string][]string{"cloud": {"docker"}}, resultA.SkillGaps)
	assert.Equal(t, 1, resultA.MissingSkillsCount)
	assert.InDelta(t, 2.0/3.0, resultA.SkillScore, 1e-9)

	assert.Empty(t, resultB.SkillGaps)
	assert.Equal(t, 0, resultB.MissingSkillsCount)
	assert.InDelta(t, 1.0, resultB.SkillScore, 1e-9)

	assert.Greater(t, resultB.Score, resultA.Score)
}

func TestScore_KnownValues(t *testing.T) {
	scorer := NewScorer(nil, nil)

	// JD keywords: seeking python developer aws docker experience
	// A keywords: experienced python engineer used aws deployment
	result := scorer.Score("Experienced Python engineer, used AWS for deployments.", pythonJD)

	assert.InDelta(t, 0.2, result.KeywordSimilarity, 1e-9)
	assert.InDelta(t, (0.3*0.2+0.7*(2.0/3.0))*1.2, result.Score, 1e-9)
}

func TestScore_EmptyResume(t *testing.T) {
	scorer := NewScorer(nil, nil)

	result := scorer.Score("", pythonJD)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 3, result.MissingSkillsCount)
}

func TestScore_BothEmpty(t *testing.T) {
	scorer := NewScorer(nil, nil)

	result := scorer.Score("", "")
	assert.Equal(t, 0.0, result.Score)
	assert.Empty(t, result.SkillGaps)
}

func TestScore_JDWithoutSkillsUsesKeywordsOnly(t *testing.T) {
	scorer := NewScorer(nil, nil)

	result := scorer.Score("warehouse forklift operator", "forklift operator warehouse")

	assert.Equal(t, 0.0, result.SkillScore)
	assert.InDelta(t, 1.0, result.KeywordSimilarity, 1e-9)
	assert.InDelta(t, 0.36, result.Score, 1e-9)
}

func TestScore_ClampsToOne(t *testing.T) {
	scorer := NewScorer(nil, nil)

	text := "Python AWS Docker developer experience seeking"
	result := scorer.Score(text, text)

	assert.Equal(t, 1.0, result.Score)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	scorer := NewScorer(nil, nil)
	rng := rand.New(rand.NewPCG(7, 11))
	vocab := []string{
		"python", "aws", "docker", "kubernetes", "leadership", "java", "react",
		"engineer", "data", "pipeline", "sales", "git", "power", "bi", "the", "!",
		"https://example.com", "me@example.com", "12", "C++", "node.js",
	}

	randomText := func() string {
		n := rng.IntN(30)
		words := make([]string, n)
		for i := range words {
			words[i] = vocab[rng.IntN(len(vocab))]
		}
		return strings.Join(words, " ")
	}

	for i := 0; i < 500; i++ {
		result := scorer.Score(randomText(), randomText())
		require.GreaterOrEqual(t, result.Score, 0.0)
		require.LessOrEqual(t, result.Score, 1.0)
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"a"}, nil))
	assert.Equal(t, 1.0, Jaccard([]string{"a", "b"}, []string{"b", "a"}))
	assert.InDelta(t, 1.0/3.0, Jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
	// duplicates count once
	assert.InDelta(t, 0.5, Jaccard([]string{"a", "a", "b"}, []string{"a"}), 1e-9)
}

func TestJaccard_Symmetric(t *testing.T) {
	scorer := NewScorer(nil, nil)
	pairs := [][2]string{
		{"Python developer with Docker", "Docker engineer using Python daily"},
		{"", "Kubernetes operator"},
		{"sales marketing lead", "marketing sales"},
	}

	for _, p := range pairs {
		assert.Equal(t, scorer.KeywordSimilarity(p[0], p[1]), scorer.KeywordSimilarity(p[1], p[0]))
	}
}

func TestSkillGaps_MissingCategoryReturnsFullList(t *testing.T) {
	scorer := NewScorer(nil, nil)

	gaps := scorer.SkillGaps("Python and SQL only", "We need AWS, Docker and Kubernetes plus Python")

	assert.Equal(t, scorer.Taxonomy().ExtractSkills("We need AWS, Docker and Kubernetes plus Python")["cloud"], gaps["cloud"])
	assert.Equal(t, []string{"aws", "docker", "kubernetes"}, gaps["cloud"])
	assert.NotContains(t, gaps, "programming")
}

func TestSkillGaps_NoJDSkills(t *testing.T) {
	scorer := NewScorer(nil, nil)

	assert.Empty(t, scorer.SkillGaps("Python", "friendly team player wanted"))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, 0.0, combine(0, 0))
	assert.InDelta(t, 0.36, combine(1, 0), 1e-9)
	assert.InDelta(t, 0.84, combine(0, 1), 1e-9)
	assert.Equal(t, 1.0, combine(1, 1))
}
