package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/store"
	"github.com/jonathan/resume-screener/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.RankedCandidates{
		Total: 7,
		Ranked: []types.RankedCandidate{
			{Rank: 1, ID: "alice", Score: 0.91, Band: types.BandExcellent, Category: "DATA-SCIENCE", CategoryConfidence: 0.8},
			{Rank: 2, ID: "bob", Score: 0.45, Band: types.BandAverage, Category: types.UnknownCategory, MissingSkillsCount: 3},
		},
		Excluded: []types.ExcludedDocument{{Index: 4, Reason: "empty id"}},
	}

	p.PrintRanking(result)
	output := buf.String()

	assert.Contains(t, output, "TOP RANKED CANDIDATES")
	assert.Contains(t, output, "Candidates ranked: 7")
	assert.Contains(t, output, "#1  alice")
	assert.Contains(t, output, "0.91 (excellent)")
	assert.Contains(t, output, "DATA-SCIENCE (80%)")
	assert.Contains(t, output, "Missing: 3 skills")
	assert.Contains(t, output, "Excluded: 1 documents")
}

func TestPrintRanking_TruncatesList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &types.RankedCandidates{Total: 8}
	for i := 0; i < 8; i++ {
		result.Ranked = append(result.Ranked, types.RankedCandidate{Rank: i + 1, ID: "c"})
	}

	p.PrintRanking(result)
	assert.Contains(t, buf.String(), "... and 3 more candidates")
}

func TestPrintRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRanking(nil)
	p.PrintRanking(&types.RankedCandidates{})

	assert.Empty(t, buf.String())
}

func TestPrintSkills(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	set := types.SkillSet{"cloud": {"aws"}, "programming": {"python", "go"}}
	p.PrintSkills("SKILLS", set, []string{"programming", "ml_ai", "cloud"})
	output := buf.String()

	assert.Contains(t, output, "programming (2):")
	assert.Contains(t, output, "• python")
	assert.Contains(t, output, "Total: 3 skills")
	assert.Less(t, strings.Index(output, "programming"), strings.Index(output, "cloud"))
	assert.NotContains(t, output, "ml_ai")
}

func TestPrintSkills_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkills("SKILLS", nil, nil)
	assert.Contains(t, buf.String(), "No skills found")
}

func TestPrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(&classifier.Evaluation{
		Accuracy:    0.875,
		TrainSize:   32,
		TestSize:    8,
		PerClass:    []classifier.ClassMetrics{{Class: "HR", F1: 0.9, Support: 4}},
		MacroAvg:    classifier.ClassMetrics{F1: 0.86},
		WeightedAvg: classifier.ClassMetrics{F1: 0.87},
	})
	output := buf.String()

	assert.Contains(t, output, "CLASSIFIER EVALUATION")
	assert.Contains(t, output, "Accuracy:  0.875")
	assert.Contains(t, output, "32 / 8")
	assert.Contains(t, output, "HR")
	assert.Contains(t, output, "Macro F1:    0.860")
}

func TestPrintPrediction(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPrediction("r1", classifier.Prediction{Category: "HR", Confidence: 0.42})
	assert.Contains(t, buf.String(), "PREDICTION r1")
	assert.Contains(t, buf.String(), "42.0%")

	buf.Reset()
	p.PrintPrediction("r2", classifier.Prediction{Category: types.UnknownCategory, Unmapped: true})
	assert.Contains(t, buf.String(), "not in label set")
}

func TestPrintStatistics(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStatistics(&store.Statistics{
		TotalApplicants: 3,
		AverageScore:    0.5,
		Categories:      []store.CategoryStats{{Category: "ENGINEERING", Count: 2, AvgScore: 0.6}},
	})
	output := buf.String()

	assert.Contains(t, output, "Applicants:    3")
	assert.Contains(t, output, "ENGINEERING")
	assert.Contains(t, output, "avg 0.60")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
