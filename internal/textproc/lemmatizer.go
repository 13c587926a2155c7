package textproc

import "strings"

// Lemmatizer reduces a lower-case token to its dictionary form.
type Lemmatizer interface {
	Lemmatize(token string) string
}

// nounExceptions holds irregular plural forms that suffix rules cannot recover.
var nounExceptions = map[string]string{
	"analyses":   "analysis",
	"bases":      "basis",
	"children":   "child",
	"crises":     "crisis",
	"criteria":   "criterion",
	"diagnoses":  "diagnosis",
	"feet":       "foot",
	"geese":      "goose",
	"hypotheses": "hypothesis",
	"indices":    "index",
	"lives":      "life",
	"matrices":   "matrix",
	"media":      "medium",
	"men":        "man",
	"mice":       "mouse",
	"people":     "person",
	"phenomena":  "phenomenon",
	"selves":     "self",
	"teeth":      "tooth",
	"theses":     "thesis",
	"vertices":   "vertex",
	"wives":      "wife",
	"women":      "woman",
}

// invariantSuffixes mark singular words ending in "s" that must not be stripped.
var invariantSuffixes = []string{"ss", "us", "is", "ous", "ics", "ness", "series", "species"}

// detachRule strips suffix and appends replacement, mirroring WordNet's noun morphology.
type detachRule struct {
	suffix      string
	replacement string
}

// Rules are tried in order; the first applicable one wins.
var nounRules = []detachRule{
	{"sses", "ss"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"xes", "x"},
	{"ies", "y"},
	{"s", ""},
}

// EnglishLemmatizer is a rule-based English noun lemmatizer.
// Tokens it does not recognise as plural nouns are returned unchanged.
type EnglishLemmatizer struct {
	exceptions map[string]string
}

// NewEnglishLemmatizer returns a lemmatizer with the built-in exception table.
func NewEnglishLemmatizer() *EnglishLemmatizer {
	return &EnglishLemmatizer{exceptions: nounExceptions}
}

// Lemmatize returns the singular form of token when it looks like a regular plural.
func (l *EnglishLemmatizer) Lemmatize(token string) string {
	if lemma, ok := l.exceptions[token]; ok {
		return lemma
	}
	if len(token) <= 3 {
		return token
	}
	for _, suffix := range invariantSuffixes {
		if strings.HasSuffix(token, suffix) {
			return token
		}
	}
	for _, rule := range nounRules {
		if !strings.HasSuffix(token, rule.suffix) {
			continue
		}
		stem := strings.TrimSuffix(token, rule.suffix) + rule.replacement
		if len(stem) < 3 {
			return token
		}
		return stem
	}
	return token
}
