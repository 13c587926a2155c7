package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalJSON_NonStringText(t *testing.T) {
	var docs []Document
	payload := `[
		{"id": "a", "text": "Python developer"},
		{"id": "b", "text": 12345},
		{"id": "c", "text": null, "category": "Engineering"},
		{"id": "d"}
	]`

	require.NoError(t, json.Unmarshal([]byte(payload), &docs))
	require.Len(t, docs, 4)

	assert.Equal(t, "Python developer", docs[0].Text)
	assert.Equal(t, "", docs[1].Text)
	assert.Equal(t, "", docs[2].Text)
	assert.Equal(t, "Engineering", docs[2].Category)
	assert.Equal(t, "d", docs[3].ID)
	assert.Equal(t, "", docs[3].Text)
}

func TestDocument_UnmarshalJSON_InvalidID(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"id": 7, "text": "x"}`), &doc)
	assert.Error(t, err)
}

func TestSkillSet_CountAndContains(t *testing.T) {
	set := SkillSet{
		"cloud":       {"aws", "docker"},
		"programming": {"python"},
	}

	assert.Equal(t, 3, set.Count())
	assert.True(t, set.Contains("cloud", "docker"))
	assert.False(t, set.Contains("cloud", "python"))
	assert.False(t, set.Contains("tools", "git"))
	assert.Equal(t, 0, SkillSet(nil).Count())
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, BandExcellent, ScoreBand(0.95))
	assert.Equal(t, BandExcellent, ScoreBand(0.8))
	assert.Equal(t, BandGood, ScoreBand(0.6))
	assert.Equal(t, BandAverage, ScoreBand(0.45))
	assert.Equal(t, BandPoor, ScoreBand(0.1))
}
