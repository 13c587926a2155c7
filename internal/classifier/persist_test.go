package classifier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTripPredictsIdentically(t *testing.T) {
	model, _ := trainSynthetic(t)
	dir := filepath.Join(t.TempDir(), "model")

	require.NoError(t, Save(model, dir))
	assert.Equal(t, StatePersisted, model.State())
	for _, name := range []string{VectorizerFile, EncoderFile, ClassifierFile, ManifestFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, loaded.State())
	assert.Equal(t, model.BundleID(), loaded.BundleID())
	assert.True(t, model.CreatedAt().Equal(loaded.CreatedAt()))
	assert.Equal(t, model.Classes(), loaded.Classes())

	texts, _ := syntheticCorpus(4)
	texts = append(texts, "", "nothing relevant at all", vocabText("HR"))
	for _, text := range texts {
		want, err := model.Predict(text)
		require.NoError(t, err)
		got, err := loaded.Predict(text)
		require.NoError(t, err)
		assert.Equal(t, want, got, text)
	}
}

func TestSave_ReplacesExistingBundle(t *testing.T) {
	first, _ := trainSynthetic(t)
	second, _ := trainSynthetic(t)
	dir := filepath.Join(t.TempDir(), "model")

	require.NoError(t, Save(first, dir))
	require.NoError(t, Save(second, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, second.BundleID(), loaded.BundleID())

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "staging and backup directories are removed")
}

func TestSave_UntrainedModel(t *testing.T) {
	err := Save(NewModel(), filepath.Join(t.TempDir(), "model"))

	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoad_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing"))
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	// A directory without a manifest was never completely saved.
	_, err = Load(dir)
	require.ErrorAs(t, err, &notFound)
}

func TestLoad_Corrupt(t *testing.T) {
	tests := []struct {
		name   string
		damage func(t *testing.T, dir string)
	}{
		{
			name: "tampered artifact",
			damage: func(t *testing.T, dir string) {
				path := filepath.Join(dir, EncoderFile)
				data, err := os.ReadFile(path)
				require.NoError(t, err)
				require.NoError(t, os.WriteFile(path, append(data, ' '), 0644))
			},
		},
		{
			name: "missing artifact",
			damage: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, ClassifierFile)))
			},
		},
		{
			name: "manifest fails schema",
			damage: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`{"format_version": 1}`), 0644))
			},
		},
		{
			name: "manifest not json",
			damage: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(`not json`), 0644))
			},
		},
		{
			name: "artifact from another bundle",
			damage: func(t *testing.T, dir string) {
				other, _ := trainSynthetic(t)
				otherDir := filepath.Join(t.TempDir(), "other")
				require.NoError(t, Save(other, otherDir))

				data, err := os.ReadFile(filepath.Join(otherDir, EncoderFile))
				require.NoError(t, err)
				require.NoError(t, os.WriteFile(filepath.Join(dir, EncoderFile), data, 0644))

				// Fix the checksum so only the bundle id disagrees.
				manifestPath := filepath.Join(dir, ManifestFile)
				raw, err := os.ReadFile(manifestPath)
				require.NoError(t, err)
				var m Manifest
				require.NoError(t, json.Unmarshal(raw, &m))
				m.Artifacts[EncoderFile] = checksum(data)
				raw, err = json.Marshal(m)
				require.NoError(t, err)
				require.NoError(t, os.WriteFile(manifestPath, raw, 0644))
			},
		},
	}

	model, _ := trainSynthetic(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "model")
			require.NoError(t, Save(model, dir))
			tt.damage(t, dir)

			_, err := Load(dir)
			var corrupt *CorruptError
			require.ErrorAs(t, err, &corrupt)
		})
	}
}
