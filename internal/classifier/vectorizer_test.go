package classifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vectorizerDocs = []string{
	"the python developer",
	"python developer role",
	"java developer",
}

func permissiveConfig() VectorizerConfig {
	cfg := DefaultVectorizerConfig()
	cfg.MinDF = 1
	cfg.MaxDF = 1.0
	return cfg
}

func TestVectorizer_VocabularyIsSorted(t *testing.T) {
	v := NewVectorizer(permissiveConfig())
	require.NoError(t, v.Fit(vectorizerDocs))

	assert.Equal(t, map[string]int{
		"developer":        0,
		"developer role":   1,
		"java":             2,
		"java developer":   3,
		"python":           4,
		"python developer": 5,
		"role":             6,
	}, v.Vocabulary)

	// developer occurs in every document
	assert.InDelta(t, 1.0, v.IDF[0], 1e-12)
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[4], 1e-12)
}

func TestVectorizer_DocumentFrequencyPruning(t *testing.T) {
	cfg := DefaultVectorizerConfig()
	cfg.MinDF = 2
	cfg.MaxDF = 0.8
	v := NewVectorizer(cfg)
	require.NoError(t, v.Fit(vectorizerDocs))

	// developer is in 3/3 documents, above 0.8
	assert.Equal(t, map[string]int{"python": 0, "python developer": 1}, v.Vocabulary)
}

func TestVectorizer_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	cfg := permissiveConfig()
	cfg.MaxFeatures = 2
	v := NewVectorizer(cfg)
	require.NoError(t, v.Fit(vectorizerDocs))

	// developer (3) then python and "python developer" tie at 2; alphabetical wins
	assert.Equal(t, map[string]int{"developer": 0, "python": 1}, v.Vocabulary)
}

func TestVectorizer_Transform(t *testing.T) {
	v := NewVectorizer(permissiveConfig())
	require.NoError(t, v.Fit(vectorizerDocs))

	vec := v.Transform("Python python")
	assert.Equal(t, []int{4}, vec.Indices)
	assert.InDelta(t, 1.0, vec.Values[0], 1e-12)

	vec = v.Transform("python developer")
	assert.Equal(t, []int{0, 4, 5}, vec.Indices)
	var norm float64
	for _, x := range vec.Values {
		norm += x * x
	}
	assert.InDelta(t, 1.0, norm, 1e-12)
	assert.Equal(t, vec.Values[1], vec.At(4))
	assert.Zero(t, vec.At(2))

	empty := v.Transform("completely unseen words")
	assert.Empty(t, empty.Indices)
}

func TestVectorizer_InsufficientData(t *testing.T) {
	cfg := DefaultVectorizerConfig()
	cfg.MinDF = 5

	err := NewVectorizer(cfg).Fit(vectorizerDocs)
	var dataErr *InsufficientDataError
	require.ErrorAs(t, err, &dataErr)

	err = NewVectorizer(DefaultVectorizerConfig()).Fit(nil)
	require.ErrorAs(t, err, &dataErr)

	err = NewVectorizer(permissiveConfig()).Fit([]string{"the and of", "a an"})
	require.ErrorAs(t, err, &dataErr)
}

func TestWordTokens(t *testing.T) {
	assert.Equal(t, []string{"and", "go", "r_2", "é1"}, wordTokens("c++ and go, r_2 x é1"))
	assert.Empty(t, wordTokens("  ! ? "))
}
