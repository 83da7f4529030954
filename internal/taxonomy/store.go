// Package taxonomy loads the category/alias configuration and exposes
// rule-based alias lookup over it.
package taxonomy

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/suriya2318/AI-FinCatTransaction/internal/common"
	"github.com/suriya2318/AI-FinCatTransaction/internal/model"
)

// Substring matches are only considered for aliases of at least this
// many characters, guarding against short aliases firing inside
// unrelated words ("gas" in "Vegas").
const minSubstringAliasLen = 4

var tokenSplit = regexp.MustCompile(`[^0-9a-z_]+`)

// Store owns the loaded taxonomy. It is read-only after its one-time
// load; concurrent first use performs exactly one load.
type Store struct {
	path       string
	categories []model.Category
	mu         sync.RWMutex
	loaded     bool
}

// NewStore creates a store reading its configuration from path. The
// file is not read until Load or the first lookup.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads and validates the taxonomy configuration. It is
// idempotent: once loaded, the parsed taxonomy is served from memory
// until Invalidate is called. A missing or malformed file is an error;
// the store never degrades to an empty taxonomy.
func (s *Store) Load() error {
	_, err := s.ensureLoaded()
	return err
}

// Invalidate drops the cached taxonomy so the next use reloads it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.categories = nil
}

// Categories returns all categories in configuration order.
func (s *Store) Categories() ([]model.Category, error) {
	cats, err := s.ensureLoaded()
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, len(cats))
	copy(out, cats)
	return out, nil
}

// AliasLookup matches text against the configured aliases. The token
// pass runs first over the whole taxonomy and is authoritative: an
// alias equal to a whole token of the lowercased input wins
// immediately, in taxonomy order then alias order. Only if no token
// matches anywhere does the lower-precision substring pass run.
// An unloaded store loads implicitly.
func (s *Store) AliasLookup(text string) (string, model.MatchKind, error) {
	if text == "" {
		return "", model.MatchNone, nil
	}

	cats, err := s.ensureLoaded()
	if err != nil {
		return "", model.MatchNone, err
	}

	lower := strings.ToLower(text)

	tokens := make(map[string]struct{})
	for _, tok := range tokenSplit.Split(lower, -1) {
		if tok != "" {
			tokens[tok] = struct{}{}
		}
	}

	for _, cat := range cats {
		for _, alias := range cat.Aliases {
			if _, ok := tokens[alias]; ok {
				return cat.ID, model.MatchToken, nil
			}
		}
	}

	for _, cat := range cats {
		for _, alias := range cat.Aliases {
			if len(alias) >= minSubstringAliasLen && strings.Contains(lower, alias) {
				return cat.ID, model.MatchSubstring, nil
			}
		}
	}

	return "", model.MatchNone, nil
}

// ensureLoaded returns the cached taxonomy, loading it on first use.
// Double-checked locking keeps concurrent first callers down to a
// single file read; failures are not cached.
func (s *Store) ensureLoaded() ([]model.Category, error) {
	s.mu.RLock()
	if s.loaded {
		cats := s.categories
		s.mu.RUnlock()
		return cats, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.categories, nil
	}

	cats, err := loadFile(s.path)
	if err != nil {
		return nil, err
	}

	s.categories = cats
	s.loaded = true

	slog.Info("loaded taxonomy",
		"path", s.path,
		"categories", len(cats))

	return cats, nil
}

// taxonomyFile mirrors the on-disk configuration document.
type taxonomyFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	ID          string   `yaml:"id"`
	DisplayName string   `yaml:"display_name"`
	Aliases     []string `yaml:"aliases"`
}

func loadFile(path string) ([]model.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrTaxonomyNotFound, path)
		}
		return nil, fmt.Errorf("failed to read taxonomy %s: %w", path, err)
	}

	var doc taxonomyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTaxonomy, err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined in %s", common.ErrInvalidTaxonomy, path)
	}

	categories := make([]model.Category, 0, len(doc.Categories))
	seen := make(map[string]struct{}, len(doc.Categories))

	for i, entry := range doc.Categories {
		if entry.ID == "" {
			return nil, fmt.Errorf("%w: category %d has no id", common.ErrInvalidTaxonomy, i)
		}
		if _, dup := seen[entry.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %q", common.ErrInvalidTaxonomy, entry.ID)
		}
		seen[entry.ID] = struct{}{}

		cat := model.Category{
			ID:          entry.ID,
			DisplayName: entry.DisplayName,
			Aliases:     normalizeAliases(entry.Aliases),
		}
		if cat.DisplayName == "" {
			cat.DisplayName = cat.ID
		}
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidTaxonomy, err)
		}
		categories = append(categories, cat)
	}

	return categories, nil
}

// normalizeAliases lowercases and deduplicates aliases once at load
// time, preserving the configured order. Lookups never re-normalize.
func normalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	seen := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
