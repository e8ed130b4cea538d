package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	gitignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"

	"github.com/nickcecere/mindhub/internal/store"
)

// Loader reads knowledge files from a directory tree.
type Loader struct {
	root        string
	ignorer     *gitignore.GitIgnore
	categorizer *Categorizer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithIgnorePatterns skips files matching the gitignore-style patterns.
func WithIgnorePatterns(patterns []string) LoaderOption {
	return func(l *Loader) {
		l.ignorer = gitignore.CompileIgnoreLines(patterns...)
	}
}

// WithCategorizer replaces the default categorizer.
func WithCategorizer(c *Categorizer) LoaderOption {
	return func(l *Loader) {
		l.categorizer = c
	}
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts ...LoaderOption) (*Loader, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve knowledge dir: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("knowledge dir does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("knowledge path is not a directory: %s", root)
	}

	l := &Loader{
		root:        root,
		ignorer:     gitignore.CompileIgnoreLines(),
		categorizer: DefaultCategorizer(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the absolute knowledge directory.
func (l *Loader) Root() string {
	return l.root
}

// Ignored reports whether path (absolute or relative to the root) is skipped.
func (l *Loader) Ignored(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(l.root, path)
		if err != nil {
			return false
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return l.ignorer.MatchesPath(rel)
}

// IsKnowledgeFile reports whether path has a YAML extension.
func IsKnowledgeFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load parses every knowledge file and returns the records ordered by
// section, then title.
func (l *Loader) Load() ([]store.Record, error) {
	var records []store.Record
	seen := make(map[string]string)

	err := filepath.WalkDir(l.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Debug("Error accessing path", "path", path, "error", err)
			return nil
		}
		if path == l.root {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			rel = path
		}

		if d.IsDir() {
			if l.Ignored(rel) || l.ignorer.MatchesPath(filepath.ToSlash(rel)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsKnowledgeFile(path) || l.Ignored(rel) {
			return nil
		}

		recs, err := l.loadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		for _, r := range recs {
			if prev, ok := seen[r.ID]; ok {
				return fmt.Errorf("%s: duplicate document %q in section %q (first defined in %s)", rel, r.Title, r.Section, prev)
			}
			seen[r.ID] = rel
		}
		records = append(records, recs...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Section != records[j].Section {
			return records[i].Section < records[j].Section
		}
		return records[i].Title < records[j].Title
	})

	log.Debug("Loaded knowledge", "dir", l.root, "documents", len(records))
	return records, nil
}

func (l *Loader) loadFile(path string) ([]store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	section := strings.TrimSpace(f.Section)
	if section == "" {
		return nil, fmt.Errorf("missing section")
	}

	records := make([]store.Record, 0, len(f.Documents))
	for i, doc := range f.Documents {
		title := strings.TrimSpace(doc.Title)
		content := strings.TrimSpace(doc.Content)
		if title == "" || content == "" {
			return nil, fmt.Errorf("document %d: title and content are required", i)
		}

		id := doc.ID
		if id == "" {
			id = documentID(section, title)
		}

		records = append(records, store.Record{
			ID:       id,
			Title:    title,
			Section:  section,
			Content:  content,
			Category: l.categorizer.Categorize(section, doc.Category, doc.Tags),
			Tags:     store.JoinTags(cleanTags(doc.Tags)),
		})
	}
	return records, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
