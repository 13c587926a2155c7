package classifier

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-screener/internal/textproc"
)

// StopwordsEnglish selects the built-in English stopword list.
const StopwordsEnglish = "english"

// VectorizerConfig holds the TF-IDF vocabulary parameters.
type VectorizerConfig struct {
	MaxFeatures int     `json:"max_features"`
	NGramMin    int     `json:"ngram_min"`
	NGramMax    int     `json:"ngram_max"`
	MinDF       int     `json:"min_df"`
	MaxDF       float64 `json:"max_df"` // fraction of documents when <= 1, absolute count otherwise
	StopWords   string  `json:"stop_words,omitempty"`
}

// DefaultVectorizerConfig returns the settings used for job-category training.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		MaxFeatures: 5000,
		NGramMin:    1,
		NGramMax:    2,
		MinDF:       2,
		MaxDF:       0.8,
		StopWords:   StopwordsEnglish,
	}
}

// SparseVector is a row of the document-term matrix. Indices are ascending.
type SparseVector struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

// At returns the value stored for feature f, or 0.
func (v SparseVector) At(f int) float64 {
	i := sort.SearchInts(v.Indices, f)
	if i < len(v.Indices) && v.Indices[i] == f {
		return v.Values[i]
	}
	return 0
}

// Vectorizer turns text into L2-normalized TF-IDF vectors over a fitted vocabulary.
type Vectorizer struct {
	Config     VectorizerConfig `json:"config"`
	Vocabulary map[string]int   `json:"vocabulary"`
	IDF        []float64        `json:"idf"`

	stopwords *textproc.StopwordSet
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(cfg VectorizerConfig) *Vectorizer {
	if cfg.NGramMin <= 0 {
		cfg.NGramMin = 1
	}
	if cfg.NGramMax < cfg.NGramMin {
		cfg.NGramMax = cfg.NGramMin
	}
	if cfg.MinDF <= 0 {
		cfg.MinDF = 1
	}
	if cfg.MaxDF <= 0 {
		cfg.MaxDF = 1.0
	}
	return &Vectorizer{Config: cfg}
}

// NumFeatures returns the vocabulary size.
func (v *Vectorizer) NumFeatures() int {
	return len(v.IDF)
}

func (v *Vectorizer) prepare() {
	if v.stopwords == nil && v.Config.StopWords == StopwordsEnglish {
		v.stopwords = textproc.EnglishStopwords()
	}
}

// Fit learns the vocabulary and inverse document frequencies from docs.
func (v *Vectorizer) Fit(docs []string) error {
	v.prepare()

	n := len(docs)
	if n == 0 {
		return &InsufficientDataError{Message: "no documents to vectorize"}
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range docs {
		counts := countTerms(v.analyze(doc))
		for term, c := range counts {
			docFreq[term]++
			termFreq[term] += c
		}
	}

	maxDocCount := v.Config.MaxDF
	if maxDocCount <= 1.0 {
		maxDocCount = v.Config.MaxDF * float64(n)
	}
	if maxDocCount < float64(v.Config.MinDF) {
		return &InsufficientDataError{Message: "max_df corresponds to fewer documents than min_df"}
	}

	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.Config.MinDF || float64(df) > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return &InsufficientDataError{Message: "no terms remain after document frequency pruning"}
	}

	if v.Config.MaxFeatures > 0 && len(terms) > v.Config.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.Config.MaxFeatures]
	}
	sort.Strings(terms)

	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}
	return nil
}

// Transform vectorizes one document. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(doc string) SparseVector {
	v.prepare()

	weights := make(map[int]float64)
	for _, term := range v.analyze(doc) {
		if idx, ok := v.Vocabulary[term]; ok {
			weights[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(weights)),
		Values:  make([]float64, 0, len(weights)),
	}
	for idx := range weights {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := weights[idx] * v.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// TransformAll vectorizes each document.
func (v *Vectorizer) TransformAll(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, d := range docs {
		out[i] = v.Transform(d)
	}
	return out
}

// analyze produces the word n-grams of doc after stopword removal.
func (v *Vectorizer) analyze(doc string) []string {
	words := wordTokens(strings.ToLower(doc))
	if v.stopwords != nil {
		kept := words[:0]
		for _, w := range words {
			if !v.stopwords.Contains(w) {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	minN, maxN := v.Config.NGramMin, v.Config.NGramMax
	if minN <= 0 {
		minN = 1
	}
	if maxN < minN {
		maxN = minN
	}

	terms := make([]string, 0, len(words)*(maxN-minN+1))
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			if n == 1 {
				terms = append(terms, words[i])
				continue
			}
			terms = append(terms, strings.Join(words[i:i+n], " "))
		}
	}
	return terms
}

// wordTokens returns runs of letters, digits and underscores at least two runes long.
func wordTokens(s string) []string {
	var tokens []string
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func countTerms(terms []string) map[string]int {
	counts := make(map[string]int, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return counts
}
