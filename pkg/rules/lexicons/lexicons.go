// Package lexicons provides the per-language keyword packs consumed by
// the rule-backed signal sources. The default packs are embedded in the
// binary; operators can layer overrides from a directory and hot-reload
// them while the service runs.
package lexicons

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var packsFS embed.FS

// Names of the embedded lexicons. Each rule source reads one of them.
const (
	Toxicity  = "toxicity"
	Hate      = "hate"
	Political = "political"
	Intensity = "intensity"
)

// Lexicon holds per-language term lists for one category. Terms are
// lowercased at load time so lookups are case-insensitive.
type Lexicon struct {
	Name  string              `yaml:"name"`
	Terms map[string][]string `yaml:"terms"`
}

// ForLanguage returns the term list for a language code, falling back
// to the English list when the language has no entry. The English list
// anchors every pack, so unknown languages still get some coverage.
func (l *Lexicon) ForLanguage(lang string) []string {
	if terms, ok := l.Terms[lang]; ok {
		return terms
	}
	return l.Terms["en"]
}

// Languages returns the covered language codes in sorted order.
func (l *Lexicon) Languages() []string {
	langs := make([]string, 0, len(l.Terms))
	for lang := range l.Terms {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Store holds the active set of lexicons behind an atomic pointer so a
// reload swaps the whole set at once. Readers never block and never see
// a partially-loaded state.
type Store struct {
	current     atomic.Pointer[map[string]*Lexicon]
	overrideDir string
}

// Load builds a store from the embedded packs.
func Load() (*Store, error) {
	index, err := loadEmbedded()
	if err != nil {
		return nil, err
	}

	s := &Store{}
	s.current.Store(&index)
	return s, nil
}

// MustLoad builds a store from the embedded packs and panics on error.
// The packs are compiled into the binary, so a failure here means the
// build itself is broken.
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded lexicons: %v", err))
	}
	return s
}

// MergeDir layers operator overrides from a directory of YAML packs on
// top of the embedded set, and remembers the directory for Reload. An
// override replaces the term list per (lexicon, language) pair; packs
// with new names are added whole. A missing directory is not an error;
// the operator simply has no overrides yet.
func (s *Store) MergeDir(dir string) error {
	s.overrideDir = dir
	return s.Reload()
}

// Reload rebuilds the active set from the embedded packs plus any
// remembered override directory, then swaps it in atomically.
func (s *Store) Reload() error {
	index, err := loadEmbedded()
	if err != nil {
		return err
	}

	if s.overrideDir != "" {
		if err := mergeDir(index, s.overrideDir); err != nil {
			return err
		}
	}

	s.current.Store(&index)
	return nil
}

// Lexicon returns the named lexicon, or nil when unknown.
func (s *Store) Lexicon(name string) *Lexicon {
	return (*s.current.Load())[name]
}

// Terms returns the named lexicon's terms for a language, with the
// English fallback. Unknown lexicon names yield an empty list.
func (s *Store) Terms(name, lang string) []string {
	lex := s.Lexicon(name)
	if lex == nil {
		return nil
	}
	return lex.ForLanguage(lang)
}

// Names returns the loaded lexicon names in sorted order.
func (s *Store) Names() []string {
	index := *s.current.Load()
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func loadEmbedded() (map[string]*Lexicon, error) {
	files, err := fs.Glob(packsFS, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded lexicons: %w", err)
	}

	index := make(map[string]*Lexicon, len(files))
	for _, file := range files {
		data, err := packsFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded lexicon %s: %w", file, err)
		}
		lex, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("embedded lexicon %s: %w", file, err)
		}
		index[lex.Name] = lex
	}
	return index, nil
}

func mergeDir(index map[string]*Lexicon, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read lexicon override dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read lexicon override %s: %w", path, err)
		}
		lex, err := parse(data)
		if err != nil {
			return fmt.Errorf("lexicon override %s: %w", path, err)
		}

		existing, ok := index[lex.Name]
		if !ok {
			index[lex.Name] = lex
			continue
		}
		for lang, terms := range lex.Terms {
			existing.Terms[lang] = terms
		}
	}
	return nil
}

func parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon YAML: %w", err)
	}

	if lex.Name == "" {
		return nil, fmt.Errorf("lexicon has no name")
	}
	if len(lex.Terms["en"]) == 0 {
		return nil, fmt.Errorf("lexicon %s has no English fallback terms", lex.Name)
	}

	for lang, terms := range lex.Terms {
		lowered := make([]string, 0, len(terms))
		for _, term := range terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				lowered = append(lowered, term)
			}
		}
		lex.Terms[lang] = lowered
	}
	return &lex, nil
}
