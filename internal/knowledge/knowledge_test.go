package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/mindhub/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const projectsYAML = `section: Projects
documents:
  - title: TinDog
    content: Tinder for dogs
    tags: [HTML, CSS]
  - title: React-Chatbot-Project
    content: Interaktiver Chatbot mit React und Vite
    tags: [React, JavaScript, Vite]
`

const hobbiesYAML = `section: Hobbies
documents:
  - title: Natur & Reisen - Tauchen
    content: "Tauchen (Leidenschaft): Unterwasserwelt, Entdeckung, Ruhe."
    category: Reisen
    tags: [" Tauchen ", "", Unterwasserwelt]
`

func TestCategorize(t *testing.T) {
	c := DefaultCategorizer()

	tests := []struct {
		name     string
		section  string
		explicit string
		tags     []string
		want     string
	}{
		{"explicit wins", "Projects", "Backend", []string{"React"}, "Backend"},
		{"react project", "Projects", "", []string{"React", "Vite"}, "Frontend"},
		{"javascript case-insensitive", "projects", "", []string{"javascript"}, "Frontend"},
		{"project fallback", "Projects", "", []string{"HTML"}, "Webentwicklung"},
		{"no rule", "Hobbies", "", []string{"React"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.section, tt.explicit, tt.tags))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "projects.yaml", projectsYAML)
	writeFile(t, dir, "sub/hobbies.yml", hobbiesYAML)
	writeFile(t, dir, "README.md", "# not knowledge")

	l, err := NewLoader(dir)
	require.NoError(t, err)

	recs, err := l.Load()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Ordered by section, then title.
	assert.Equal(t, "Hobbies", recs[0].Section)
	assert.Equal(t, "React-Chatbot-Project", recs[1].Title)
	assert.Equal(t, "TinDog", recs[2].Title)

	assert.Equal(t, "Reisen", recs[0].Category)
	assert.Equal(t, "Tauchen, Unterwasserwelt", recs[0].Tags)
	assert.Equal(t, "Frontend", recs[1].Category)
	assert.Equal(t, "Webentwicklung", recs[2].Category)
	assert.Len(t, recs[0].ID, 16)
}

func TestLoadStableIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "projects.yaml", projectsYAML)

	l, err := NewLoader(dir)
	require.NoError(t, err)

	first, err := l.Load()
	require.NoError(t, err)
	second, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, Fingerprint(first), Fingerprint(second))
}

func TestLoadIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "projects.yaml", projectsYAML)
	writeFile(t, dir, "drafts/hobbies.yaml", hobbiesYAML)
	writeFile(t, dir, "wip.draft.yaml", hobbiesYAML)
	writeFile(t, dir, ".hidden/hobbies.yaml", hobbiesYAML)

	l, err := NewLoader(dir, WithIgnorePatterns([]string{"drafts/", "*.draft.yaml"}))
	require.NoError(t, err)

	recs, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	assert.True(t, l.Ignored("wip.draft.yaml"))
	assert.True(t, l.Ignored(filepath.Join(dir, ".hidden", "hobbies.yaml")))
	assert.False(t, l.Ignored("projects.yaml"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("missing section", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "documents:\n  - title: a\n    content: b\n")
		l, err := NewLoader(dir)
		require.NoError(t, err)
		_, err = l.Load()
		assert.ErrorContains(t, err, "missing section")
	})

	t.Run("empty content", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "section: About\ndocuments:\n  - title: a\n")
		l, err := NewLoader(dir)
		require.NoError(t, err)
		_, err = l.Load()
		assert.ErrorContains(t, err, "title and content are required")
	})

	t.Run("duplicate title", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", projectsYAML)
		writeFile(t, dir, "b.yaml", projectsYAML)
		l, err := NewLoader(dir)
		require.NoError(t, err)
		_, err = l.Load()
		assert.ErrorContains(t, err, "duplicate document")
	})
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := []store.Record{{ID: "1", Title: "t", Section: "s", Content: "c"}}
	b := []store.Record{{ID: "1", Title: "t", Section: "s", Content: "c2"}}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.Equal(t, Fingerprint(a), Fingerprint([]store.Record{{ID: "1", Title: "t", Section: "s", Content: "c"}}))
}

func TestSeed(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	recs := []store.Record{
		{ID: "a", Title: "Über mich", Section: "About", Content: "Entwickler"},
		{ID: "b", Title: "Tauchen", Section: "Hobbies", Content: "Unterwasserwelt"},
	}

	res, err := Seed(ctx, st, recs, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Documents)

	res, err = Seed(ctx, st, recs, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	res, err = Seed(ctx, st, recs[:1], false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err = Seed(ctx, st, recs[:1], true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}
