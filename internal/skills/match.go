package skills

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-screener/internal/types"
)

// ExtractSkills finds every taxonomy phrase mentioned in text.
//
// A phrase matches when it is a case-insensitive substring of text, or when the
// phrase without whitespace is a substring of text without whitespace (so
// "power bi" matches "PowerBI"). Each phrase is reported at most once, in
// taxonomy order, and categories without matches are omitted.
func (t *Taxonomy) ExtractSkills(text string) types.SkillSet {
	found := types.SkillSet{}
	if text == "" {
		return found
	}

	lower := strings.ToLower(text)
	compact := stripWhitespace(lower)

	for _, c := range t.categories {
		var matched []string
		for _, phrase := range c.Skills {
			if strings.Contains(lower, phrase) || strings.Contains(compact, stripWhitespace(phrase)) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) > 0 {
			found[c.Name] = matched
		}
	}

	return found
}

// OrderedCategories returns the categories present in set, in taxonomy order.
// Categories unknown to the taxonomy are appended in lexical order.
func (t *Taxonomy) OrderedCategories(set map[string][]string) []string {
	ordered := make([]string, 0, len(set))
	for _, c := range t.categories {
		if _, ok := set[c.Name]; ok {
			ordered = append(ordered, c.Name)
		}
	}
	if len(ordered) == len(set) {
		return ordered
	}

	var extra []string
	for name := range set {
		if _, known := t.index[name]; !known {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(ordered, extra...)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
