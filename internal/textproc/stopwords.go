package textproc

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed stopwords_en.txt
var englishStopwordsRaw string

// StopwordSet is a read-only set of words ignored during tokenization.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from the given words. Words are lower-cased.
func NewStopwordSet(words ...string) *StopwordSet {
	set := &StopwordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set.words[w] = struct{}{}
	}
	return set
}

// EnglishStopwords returns the standard English stopword list.
func EnglishStopwords() *StopwordSet {
	var words []string
	scanner := bufio.NewScanner(strings.NewReader(englishStopwordsRaw))
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return NewStopwordSet(words...)
}

// Contains reports whether word is a stopword. A nil set contains nothing.
func (s *StopwordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len returns the number of stopwords in the set.
func (s *StopwordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}
