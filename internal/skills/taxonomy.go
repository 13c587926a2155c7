// Package skills provides the skill taxonomy and skill detection in free text.
package skills

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

// Category is a named, ordered list of canonical skill phrases.
type Category struct {
	Name   string
	Skills []string
}

// Taxonomy is an immutable catalog of skill categories. It is built once and
// never modified, so it can be shared between goroutines without locking.
type Taxonomy struct {
	version    int
	categories []Category
	index      map[string]int
}

type taxonomyFile struct {
	Version    int `yaml:"version"`
	Categories []struct {
		Name   string   `yaml:"name"`
		Skills []string `yaml:"skills"`
	} `yaml:"categories"`
}

var (
	defaultOnce     sync.Once
	defaultTaxonomy *Taxonomy
)

// Default returns the embedded taxonomy. It panics if the embedded data is invalid,
// which can only happen through a broken build.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := ParseTaxonomy(defaultTaxonomyYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded skill taxonomy is invalid: %v", err))
		}
		defaultTaxonomy = t
	})
	return defaultTaxonomy
}

// LoadTaxonomy reads a taxonomy from a YAML file.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TaxonomyError{Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy builds a taxonomy from YAML. Skill phrases are lower-cased and
// trimmed; duplicate phrases within a category are dropped.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &TaxonomyError{Message: "failed to parse YAML", Cause: err}
	}
	if len(file.Categories) == 0 {
		return nil, &TaxonomyError{Message: "no categories defined"}
	}

	t := &Taxonomy{
		version:    file.Version,
		categories: make([]Category, 0, len(file.Categories)),
		index:      make(map[string]int, len(file.Categories)),
	}

	for _, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, &TaxonomyError{Message: "category with empty name"}
		}
		if _, dup := t.index[name]; dup {
			return nil, &TaxonomyError{Message: fmt.Sprintf("duplicate category %q", name)}
		}

		seen := make(map[string]bool, len(c.Skills))
		phrases := make([]string, 0, len(c.Skills))
		for _, s := range c.Skills {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			phrases = append(phrases, s)
		}
		if len(phrases) == 0 {
			return nil, &TaxonomyError{Message: fmt.Sprintf("category %q has no skills", name)}
		}

		t.index[name] = len(t.categories)
		t.categories = append(t.categories, Category{Name: name, Skills: phrases})
	}

	return t, nil
}

// Version returns the taxonomy version declared in its source.
func (t *Taxonomy) Version() int {
	return t.version
}

// Categories returns the category names in declaration order.
func (t *Taxonomy) Categories() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Skills returns a copy of the phrases for category, or nil if it does not exist.
func (t *Taxonomy) Skills(category string) []string {
	i, ok := t.index[category]
	if !ok {
		return nil
	}
	return append([]string(nil), t.categories[i].Skills...)
}

// Size returns the total number of skill phrases.
func (t *Taxonomy) Size() int {
	n := 0
	for _, c := range t.categories {
		n += len(c.Skills)
	}
	return n
}
