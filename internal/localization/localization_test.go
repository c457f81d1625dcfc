package localization_test

import (
	"civicdesk/backend/internal/localization"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedLocalizer(t *testing.T) {
	l, err := localization.NewEmbeddedLocalizer()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "uk"}, l.Languages())
	assert.Equal(t, "in progress", l.GetString("en", "status.IN_PROGRESS"))
	assert.Equal(t, "у роботі", l.GetString("uk", "status.IN_PROGRESS"))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":   {Data: []byte(`{"greeting":"hello","only_en":"english"}`)},
		"uk.json":   {Data: []byte(`{"greeting":"привіт"}`)},
		"notes.txt": {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizerFS(fsys, ".")
	require.NoError(t, err)

	assert.Equal(t, "привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "english", l.GetString("uk", "only_en"), "missing keys fall back to English")
	assert.Equal(t, "hello", l.GetString("de", "greeting"), "unknown languages fall back to English")
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
}

func TestFormat(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(`{"event.reject":"Complaint {id} rejected: {reason}"}`)},
	}
	l, err := localization.NewLocalizerFS(fsys, ".")
	require.NoError(t, err)

	got := l.Format("en", "event.reject", map[string]string{"id": "c1", "reason": "blurry photo"})
	assert.Equal(t, "Complaint c1 rejected: blurry photo", got)
	assert.Equal(t, "Complaint {id} rejected: {reason}", l.Format("en", "event.reject", nil))
}

func TestNewLocalizer_FromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"k":"v"}`), 0o600))

	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)
	assert.Equal(t, "v", l.GetString("en", "k"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0o600))
	_, err = localization.NewLocalizer(dir)
	assert.Error(t, err)

	_, err = localization.NewLocalizer(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
