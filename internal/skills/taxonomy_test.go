package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedTaxonomy(t *testing.T) {
	tax := Default()

	assert.Equal(t, 1, tax.Version())
	assert.Equal(t, []string{"programming", "ml_ai", "web_dev", "data_science", "soft_skills", "cloud", "tools"}, tax.Categories())
	assert.Contains(t, tax.Skills("cloud"), "docker")
	assert.Nil(t, tax.Skills("unknown"))
	assert.Equal(t, 68, tax.Size())
}

func TestSkills_ReturnsCopy(t *testing.T) {
	tax := Default()

	cloud := tax.Skills("cloud")
	cloud[0] = "mutated"

	assert.Equal(t, "aws", tax.Skills("cloud")[0])
}

func TestParseTaxonomy_NormalizesPhrases(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(`
version: 3
categories:
  - name: langs
    skills: ["  Go ", go, RUST]
`))
	require.NoError(t, err)

	assert.Equal(t, 3, tax.Version())
	assert.Equal(t, []string{"go", "rust"}, tax.Skills("langs"))
}

func TestParseTaxonomy_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "categories: [unclosed"},
		{"no categories", "version: 1"},
		{"empty name", "categories:\n  - name: ''\n    skills: [go]"},
		{"duplicate", "categories:\n  - name: a\n    skills: [go]\n  - name: a\n    skills: [rust]"},
		{"no skills", "categories:\n  - name: a\n    skills: []"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaxonomy([]byte(tt.yaml))
			var taxErr *TaxonomyError
			assert.ErrorAs(t, err, &taxErr)
		})
	}
}

func TestLoadTaxonomy_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: cloud\n    skills: [aws]\n"), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud"}, tax.Categories())

	_, err = LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
