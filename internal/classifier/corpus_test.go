package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCorpusCSV(t *testing.T) {
	data := "ID,Resume_str,Resume_html,Category\n" +
		"1,\"Payroll specialist,\nbenefits\",<p>x</p>,HR\n" +
		"2,Kernel engineer,<p>y</p>, ENGINEERING \n"

	corpus, err := ReadCorpusCSV(strings.NewReader(data), DefaultCorpusColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.Len())
	assert.Equal(t, []string{"Payroll specialist,\nbenefits", "Kernel engineer"}, corpus.Texts)
	assert.Equal(t, []string{"HR", "ENGINEERING"}, corpus.Labels)
}

func TestReadCorpusCSV_CustomAndCaseInsensitiveColumns(t *testing.T) {
	data := "\ufefftext,LABEL\nhello world,A\n"

	corpus, err := ReadCorpusCSV(strings.NewReader(data), CorpusColumns{Text: "text", Label: "label"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, corpus.Texts)
	assert.Equal(t, []string{"A"}, corpus.Labels)
}

func TestReadCorpusCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		cols CorpusColumns
		want string
	}{
		{"missing column", "Resume_str,Other\nx,y\n", DefaultCorpusColumns, "Category"},
		{"empty file", "", DefaultCorpusColumns, "empty"},
		{"header only", "Resume_str,Category\n", DefaultCorpusColumns, "no rows"},
		{"short row", "Resume_str,Category\nonly\n", DefaultCorpusColumns, "fields"},
		{"same column twice", "a\nx\n", CorpusColumns{Text: "a", Label: "a"}, "column names"},
		{"blank column", "a\nx\n", CorpusColumns{Text: "a"}, "column names"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCorpusCSV(strings.NewReader(tt.data), tt.cols)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadCorpusCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumes.csv")
	require.NoError(t, os.WriteFile(path, []byte("Resume_str,Category\nledger auditing,FINANCE\n"), 0644))

	corpus, err := LoadCorpusCSV(path, DefaultCorpusColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.Len())

	_, err = LoadCorpusCSV(filepath.Join(t.TempDir(), "missing.csv"), DefaultCorpusColumns)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}
