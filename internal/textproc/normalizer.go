// Package textproc provides text cleaning, tokenization and keyword extraction
// for resumes and job descriptions.
package textproc

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// minTokenLength is the shortest token kept by Tokenize.
const minTokenLength = 3

var (
	urlPattern   = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
)

// Normalizer cleans and tokenizes text using an injected stopword set and lemmatizer.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	stopwords  *StopwordSet
	lemmatizer Lemmatizer
}

// New creates a Normalizer. A nil lemmatizer leaves tokens unchanged.
func New(stopwords *StopwordSet, lemmatizer Lemmatizer) *Normalizer {
	return &Normalizer{stopwords: stopwords, lemmatizer: lemmatizer}
}

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
)

// Default returns the process-wide English normalizer, built on first use.
func Default() *Normalizer {
	defaultOnce.Do(func() {
		defaultNormalizer = New(EnglishStopwords(), NewEnglishLemmatizer())
	})
	return defaultNormalizer
}

// Stopwords returns the stopword set the normalizer was built with.
func (n *Normalizer) Stopwords() *StopwordSet {
	return n.stopwords
}

// Clean lower-cases text, strips URLs and email addresses, replaces everything
// outside a-z with spaces and collapses whitespace.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(norm.NFKC.String(text))
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")

	text = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return ' '
	}, text)

	return strings.Join(strings.Fields(text), " ")
}

// CleanAny is Clean for loosely typed input; anything that is not a string yields "".
func (n *Normalizer) CleanAny(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return n.Clean(s)
}

// Tokenize splits cleaned text into lemmas, dropping stopwords and short tokens.
func (n *Normalizer) Tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < minTokenLength || n.stopwords.Contains(field) {
			continue
		}
		if n.lemmatizer != nil {
			field = n.lemmatizer.Lemmatize(field)
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// ExtractKeywords returns up to topN tokens ordered by frequency.
// Ties keep the order in which tokens first appeared.
func (n *Normalizer) ExtractKeywords(normalized string, topN int) []string {
	if topN <= 0 {
		return []string{}
	}

	tokens := n.Tokenize(normalized)
	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// Light applies the lighter normalization used by the category classifier:
// lower-casing and whitespace collapse only.
func Light(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
