package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CorpusColumns names the CSV columns holding resume text and category.
type CorpusColumns struct {
	Text  string `validate:"required"`
	Label string `validate:"required,nefield=Text"`
}

// DefaultCorpusColumns matches the public resume dataset layout.
var DefaultCorpusColumns = CorpusColumns{Text: "Resume_str", Label: "Category"}

// Corpus is a labelled training set.
type Corpus struct {
	Texts  []string
	Labels []string
}

// Len returns the number of examples.
func (c *Corpus) Len() int {
	return len(c.Texts)
}

// LoadCorpusCSV reads a labelled corpus from a CSV file. Columns other than
// the text and label columns are ignored.
func LoadCorpusCSV(path string, cols CorpusColumns) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Message: fmt.Sprintf("failed to open corpus %s", path), Cause: err}
	}
	defer f.Close()
	return ReadCorpusCSV(f, cols)
}

// ReadCorpusCSV reads a labelled corpus from CSV data with a header row.
func ReadCorpusCSV(r io.Reader, cols CorpusColumns) (*Corpus, error) {
	if err := validator.New().Struct(cols); err != nil {
		return nil, &InputError{Message: "invalid corpus column names", Cause: err}
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &InputError{Message: "corpus is empty"}
		}
		return nil, &InputError{Message: "failed to read corpus header", Cause: err}
	}

	textCol := columnIndex(header, cols.Text)
	labelCol := columnIndex(header, cols.Label)
	var missing []string
	if textCol < 0 {
		missing = append(missing, cols.Text)
	}
	if labelCol < 0 {
		missing = append(missing, cols.Label)
	}
	if len(missing) > 0 {
		return nil, &InputError{Message: fmt.Sprintf("corpus is missing required columns: %s", strings.Join(missing, ", "))}
	}

	corpus := &Corpus{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &InputError{Message: fmt.Sprintf("failed to read corpus row %d", line), Cause: err}
		}
		if textCol >= len(record) || labelCol >= len(record) {
			return nil, &InputError{Message: fmt.Sprintf("corpus row %d has %d fields", line, len(record))}
		}
		corpus.Texts = append(corpus.Texts, record[textCol])
		corpus.Labels = append(corpus.Labels, strings.TrimSpace(record[labelCol]))
	}

	if corpus.Len() == 0 {
		return nil, &InputError{Message: "corpus has a header but no rows"}
	}
	return corpus, nil
}

// columnIndex finds name in header, falling back to a case-insensitive match.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimPrefix(strings.TrimSpace(h), "\ufeff") == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"), name) {
			return i
		}
	}
	return -1
}
