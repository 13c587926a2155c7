package ingestion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/types"
)

// ErrUnsupportedFormat is returned for files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Resume is a loaded document with the details found in it.
type Resume struct {
	Document types.Document `json:"document"`
	Contact  Contact        `json:"contact"`
	Metadata *Metadata      `json:"metadata"`
}

var formats = map[string]string{
	".txt":  "text",
	".text": "text",
	".md":   "markdown",
	".html": "html",
	".htm":  "html",
	".docx": "docx",
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadFile reads one resume. The document id is the file name without extension.
func LoadFile(path string) (*Resume, error) {
	format, ok := formats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	text, err := readText(path, format)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	meta := NewMetadata(text)
	meta.Path = path
	meta.Format = format
	return &Resume{
		Document: types.Document{ID: strings.TrimSuffix(base, filepath.Ext(base)), Text: text},
		Contact:  ExtractContact(text, base),
		Metadata: meta,
	}, nil
}

func readText(path, format string) (string, error) {
	if format == "docx" {
		text, err := docxText(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return CleanText(text), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if format == "html" {
		text, err := fetch.ExtractMainText(string(content), fetch.DefaultTextSelectors())
		if err != nil {
			return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
		}
		return CleanText(text), nil
	}
	return CleanText(string(content)), nil
}

// Load reads resumes from files and directories. Directories contribute their
// supported files (not recursively) in name order; other files are skipped.
// A file named explicitly must be supported.
func Load(paths ...string) ([]*Resume, error) {
	var resumes []*Resume
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		files := []string{p}
		if info.IsDir() {
			if files, err = supportedFiles(p); err != nil {
				return nil, err
			}
		}
		for _, f := range files {
			r, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			resumes = append(resumes, r)
		}
	}
	return resumes, nil
}

func supportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Documents returns the ranking documents of resumes.
func Documents(resumes []*Resume) []types.Document {
	docs := make([]types.Document, len(resumes))
	for i, r := range resumes {
		docs[i] = r.Document
	}
	return docs
}
