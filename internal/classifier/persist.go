package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/schemas"
)

// Bundle file names
const (
	VectorizerFile = "tfidf_vectorizer.json"
	EncoderFile    = "label_encoder.json"
	ClassifierFile = "category_classifier.json"
	ManifestFile   = "manifest.json"
)

// FormatVersion is the bundle layout version written by Save.
const FormatVersion = 1

// Manifest describes a saved bundle. It is written last, so a directory
// without one was never completely saved.
type Manifest struct {
	FormatVersion int               `json:"format_version"`
	BundleID      string            `json:"bundle_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Classes       []string          `json:"classes"`
	NumFeatures   int               `json:"num_features"`
	Artifacts     map[string]string `json:"artifacts"` // file name -> sha256
}

// envelope stamps each artifact with the bundle it belongs to.
type envelope[T any] struct {
	FormatVersion int    `json:"format_version"`
	BundleID      string `json:"bundle_id"`
	Payload       T      `json:"payload"`
}

// Save writes the model bundle to dir. The bundle is assembled in a sibling
// temporary directory and renamed into place, replacing any previous bundle.
func Save(m *Model, dir string) error {
	if !m.Ready() {
		return &PersistenceError{Path: dir, Message: "model is not trained", Cause: ErrModelUnavailable}
	}

	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0755); err != nil {
		return &PersistenceError{Path: parent, Message: "failed to create parent directory", Cause: err}
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".tmp-*")
	if err != nil {
		return &PersistenceError{Path: parent, Message: "failed to create staging directory", Cause: err}
	}
	defer os.RemoveAll(tmp)

	id := m.bundleID.String()
	manifest := Manifest{
		FormatVersion: FormatVersion,
		BundleID:      id,
		CreatedAt:     m.createdAt,
		Classes:       m.Classes(),
		NumFeatures:   m.NumFeatures(),
		Artifacts:     make(map[string]string, 3),
	}

	artifacts := []struct {
		name    string
		payload any
	}{
		{VectorizerFile, envelope[*Vectorizer]{FormatVersion, id, m.vectorizer}},
		{EncoderFile, envelope[*LabelEncoder]{FormatVersion, id, m.encoder}},
		{ClassifierFile, envelope[*Forest]{FormatVersion, id, m.forest}},
	}
	for _, a := range artifacts {
		sum, err := writeJSON(filepath.Join(tmp, a.name), a.payload)
		if err != nil {
			return &PersistenceError{Path: filepath.Join(dir, a.name), Message: "failed to write artifact", Cause: err}
		}
		manifest.Artifacts[a.name] = sum
	}
	if _, err := writeJSON(filepath.Join(tmp, ManifestFile), manifest); err != nil {
		return &PersistenceError{Path: filepath.Join(dir, ManifestFile), Message: "failed to write manifest", Cause: err}
	}

	if err := replaceDir(tmp, dir); err != nil {
		return &PersistenceError{Path: dir, Message: "failed to move bundle into place", Cause: err}
	}

	m.state.Store(int32(StatePersisted))
	return nil
}

// replaceDir renames src to dst, moving an existing dst aside first and
// restoring it if the final rename fails.
func replaceDir(src, dst string) error {
	var backup string
	if _, err := os.Stat(dst); err == nil {
		backup = dst + ".old-" + uuid.NewString()
		if err := os.Rename(dst, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(src, dst); err != nil {
		if backup != "" {
			_ = os.Rename(backup, dst)
		}
		return err
	}
	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}

func writeJSON(path string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return checksum(data), nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load reads a bundle written by Save.
func Load(dir string) (*Model, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: dir, Cause: err}
		}
		return nil, &CorruptError{Path: dir, Message: "failed to stat bundle", Cause: err}
	}
	if !info.IsDir() {
		return nil, &CorruptError{Path: dir, Message: "bundle location is not a directory"}
	}

	manifestPath := filepath.Join(dir, ManifestFile)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: manifestPath, Cause: err}
		}
		return nil, &CorruptError{Path: manifestPath, Message: "failed to read manifest", Cause: err}
	}
	if err := schemas.Validate(schemas.ModelManifest, raw); err != nil {
		return nil, &CorruptError{Path: manifestPath, Message: "manifest does not match schema", Cause: err}
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, &CorruptError{Path: manifestPath, Message: "failed to decode manifest", Cause: err}
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, &CorruptError{Path: manifestPath, Message: fmt.Sprintf("unsupported format version %d", manifest.FormatVersion)}
	}
	bundleID, err := uuid.Parse(manifest.BundleID)
	if err != nil {
		return nil, &CorruptError{Path: manifestPath, Message: "invalid bundle id", Cause: err}
	}

	vectorizer, err := readArtifact[*Vectorizer](dir, VectorizerFile, manifest)
	if err != nil {
		return nil, err
	}
	encoder, err := readArtifact[*LabelEncoder](dir, EncoderFile, manifest)
	if err != nil {
		return nil, err
	}
	forest, err := readArtifact[*Forest](dir, ClassifierFile, manifest)
	if err != nil {
		return nil, err
	}

	if err := checkConsistency(dir, manifest, vectorizer, encoder, forest); err != nil {
		return nil, err
	}

	vectorizer.prepare()
	encoder.buildIndex()
	return newModel(vectorizer, encoder, forest, bundleID, manifest.CreatedAt, StateLoaded), nil
}

func readArtifact[T any](dir, name string, manifest Manifest) (T, error) {
	var zero T
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, &CorruptError{Path: path, Message: "failed to read artifact", Cause: err}
	}
	if checksum(data) != manifest.Artifacts[name] {
		return zero, &CorruptError{Path: path, Message: "checksum mismatch"}
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, &CorruptError{Path: path, Message: "failed to decode artifact", Cause: err}
	}
	if env.FormatVersion != manifest.FormatVersion || env.BundleID != manifest.BundleID {
		return zero, &CorruptError{Path: path, Message: "artifact belongs to a different bundle"}
	}
	return env.Payload, nil
}

func checkConsistency(dir string, manifest Manifest, v *Vectorizer, e *LabelEncoder, f *Forest) error {
	corrupt := func(msg string) error {
		return &CorruptError{Path: dir, Message: msg}
	}
	if v == nil || e == nil || f == nil {
		return corrupt("bundle has an empty artifact")
	}
	if len(v.IDF) == 0 || len(v.Vocabulary) != len(v.IDF) {
		return corrupt("vectorizer vocabulary and idf disagree")
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return corrupt(fmt.Sprintf("vocabulary term %q has out of range index %d", term, idx))
		}
	}
	if len(e.Classes) != len(manifest.Classes) {
		return corrupt("label encoder and manifest disagree on classes")
	}
	for i := range e.Classes {
		if e.Classes[i] != manifest.Classes[i] {
			return corrupt("label encoder and manifest disagree on classes")
		}
	}
	if f.NClasses != len(e.Classes) {
		return corrupt("forest and label encoder disagree on class count")
	}
	if f.NFeatures != len(v.IDF) {
		return corrupt("forest and vectorizer disagree on feature count")
	}
	if len(f.Trees) == 0 {
		return corrupt("forest has no trees")
	}
	for t, tree := range f.Trees {
		if tree == nil || len(tree.Nodes) == 0 {
			return corrupt(fmt.Sprintf("tree %d is empty", t))
		}
		for i, n := range tree.Nodes {
			if n.IsLeaf() {
				if len(n.Proba) != f.NClasses {
					return corrupt(fmt.Sprintf("tree %d has a malformed leaf", t))
				}
				continue
			}
			// Children always follow their parent, which rules out cycles.
			if n.Feature < 0 || n.Feature >= f.NFeatures || n.Left <= i || n.Right <= i ||
				n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return corrupt(fmt.Sprintf("tree %d has a malformed split", t))
			}
		}
	}
	return nil
}
