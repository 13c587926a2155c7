package ingestion

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDocx(t *testing.T, dir, name string, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	body := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func TestLoadFile_Text(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "alice.txt", "Alice Park\r\nalice@example.com\r\n\r\n\r\n\r\nPython   developer")

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", r.Document.ID)
	assert.Equal(t, "Alice Park\nalice@example.com\n\nPython developer", r.Document.Text)
	assert.Equal(t, "Alice Park", r.Contact.Name)
	assert.Equal(t, "alice@example.com", r.Contact.Email)
	assert.Equal(t, "text", r.Metadata.Format)
	assert.Equal(t, path, r.Metadata.Path)
	assert.Len(t, r.Metadata.Hash, 64)
}

func TestLoadFile_HTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bob.html", `<html><body><nav>Menu</nav><main><h1>Bob Stone</h1><p>Kubernetes and Go</p></main></body></html>`)

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", r.Document.ID)
	assert.Contains(t, r.Document.Text, "Bob Stone")
	assert.Contains(t, r.Document.Text, "Kubernetes and Go")
	assert.NotContains(t, r.Document.Text, "Menu")
}

func TestLoadFile_Docx(t *testing.T) {
	dir := t.TempDir()
	path := writeDocx(t, dir, "carol.docx", "Carol White", "Machine learning engineer", "TensorFlow and SQL")

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "carol", r.Document.ID)
	assert.Equal(t, "Carol White\nMachine learning engineer\nTensorFlow and SQL", r.Document.Text)
	assert.Equal(t, "Carol White", r.Contact.Name)
	assert.Equal(t, "docx", r.Metadata.Format)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(writeFile(t, dir, "resume.pdf", "%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeFile(t, dir, "broken.docx", "not a zip"))
	assert.Error(t, err)
}

func TestLoad_DirectoryAndFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "Beta resume")
	writeFile(t, dir, "a.md", "Alpha resume")
	writeFile(t, dir, "notes.pdf", "skipped")
	writeFile(t, dir, ".hidden.txt", "skipped")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "c.txt", "not recursed")

	extra := writeFile(t, t.TempDir(), "z.txt", "Zeta resume")

	resumes, err := Load(dir, extra)
	require.NoError(t, err)

	docs := Documents(resumes)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "z", docs[2].ID)
	assert.Equal(t, "Zeta resume", docs[2].Text)
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
