package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/storage"
)

// TemplateCatalog is the set of built-in templates and categories served by
// a catalog source
type TemplateCatalog struct {
	Templates  []prompt.Template `json:"templates" yaml:"templates"`
	Categories []prompt.Category `json:"categories" yaml:"categories"`
}

// TemplateSource provides the built-in template catalog
type TemplateSource interface {
	FetchTemplates(ctx context.Context) (TemplateCatalog, error)
}

// Entry is a template annotated with its derived state
type Entry struct {
	prompt.Template
	IsFavorite bool `json:"isFavorite"`
	UseCount   int  `json:"useCount"`
	IsEnabled  bool `json:"isEnabled"`
}

// Templates combines read-only built-ins with persisted custom templates
type Templates struct {
	doc        doc
	source     TemplateSource
	builtins   []prompt.Template
	categories []prompt.Category

	now   func() time.Time
	newID func() string
}

// NewTemplates creates a template store; source may be nil for customs only
func NewTemplates(kv storage.KV, source TemplateSource, logger *slog.Logger) *Templates {
	return &Templates{
		doc:    newDoc(kv, logger),
		source: source,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load fetches the built-in catalog
// On failure the error is logged and the store continues with no built-ins.
func (s *Templates) Load(ctx context.Context) bool {
	s.builtins, s.categories = nil, nil
	if s.source == nil {
		return true
	}

	catalog, err := s.source.FetchTemplates(ctx)
	if err != nil {
		s.doc.logger.Error("failed to load template catalog", "error", err)
		return false
	}

	s.builtins = catalog.Templates
	s.categories = catalog.Categories
	s.doc.logger.Debug("loaded template catalog", "templates", len(s.builtins), "categories", len(s.categories))
	return true
}

// List returns built-ins followed by customs
// A custom template sharing an id with a built-in takes the built-in's place.
func (s *Templates) List() []Entry {
	customs := s.customs()
	favorites := s.favoriteSet()
	counts := s.useCounts()
	enabled, configured := s.enabledMap()

	byID := make(map[string]int, len(customs))
	for i, t := range customs {
		byID[t.ID] = i
	}

	annotate := func(t prompt.Template) Entry {
		return Entry{
			Template:   t,
			IsFavorite: favorites[t.ID],
			UseCount:   counts[t.ID],
			IsEnabled:  enabledIn(enabled, configured, t.ID),
		}
	}

	entries := make([]Entry, 0, len(s.builtins)+len(customs))
	shadowed := make(map[string]bool)
	for _, t := range s.builtins {
		if i, ok := byID[t.ID]; ok {
			entries = append(entries, annotate(customs[i]))
			shadowed[t.ID] = true
			continue
		}
		entries = append(entries, annotate(t))
	}
	for _, t := range customs {
		if !shadowed[t.ID] {
			entries = append(entries, annotate(t))
		}
	}

	return entries
}

// Get returns the listed template with the given id
func (s *Templates) Get(id string) (Entry, bool) {
	for _, e := range s.List() {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Builtins returns the catalog templates as loaded
func (s *Templates) Builtins() []prompt.Template {
	return s.builtins
}

// Customs returns the persisted custom templates
func (s *Templates) Customs() []prompt.Template {
	return s.customs()
}

// Save inserts a custom template, or replaces the one with the same id
// The caller validates the template first (see prompt.ValidateTemplate).
// A template without an id gets a new one; createdAt survives replacement.
func (s *Templates) Save(t prompt.Template) prompt.Template {
	now := s.now().UTC()
	customs := s.customs()

	if t.ID == "" {
		t.ID = s.newID()
	}
	t.IsCustom = true
	t.UpdatedAt = now

	replaced := false
	for i, existing := range customs {
		if existing.ID == t.ID {
			t.CreatedAt = existing.CreatedAt
			customs[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		customs = append(customs, t)
	}

	s.doc.save(KeyCustomTemplates, customs)
	return t
}

// Delete removes a custom template and reports whether one was removed
// Built-ins are never removed.
func (s *Templates) Delete(id string) bool {
	customs := s.customs()
	kept := customs[:0]
	for _, t := range customs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(customs) {
		return false
	}
	return s.doc.save(KeyCustomTemplates, kept)
}

// ToggleFavorite flips the favorite flag and returns the new state
func (s *Templates) ToggleFavorite(id string) bool {
	favorites := s.favorites()
	for i, fav := range favorites {
		if fav == id {
			favorites = append(favorites[:i], favorites[i+1:]...)
			s.doc.save(KeyFavorites, favorites)
			return false
		}
	}
	s.doc.save(KeyFavorites, append(favorites, id))
	return true
}

func (s *Templates) IsFavorite(id string) bool {
	return s.favoriteSet()[id]
}

// Favorites returns favorite ids in the order they were added
func (s *Templates) Favorites() []string {
	return s.favorites()
}

// IncrementUseCount bumps the counter and returns its new value
func (s *Templates) IncrementUseCount(id string) int {
	counts := s.useCounts()
	counts[id]++
	s.doc.save(KeyUseCounts, counts)
	return counts[id]
}

func (s *Templates) UseCount(id string) int {
	return s.useCounts()[id]
}

// UseCounts returns every recorded counter
func (s *Templates) UseCounts() map[string]int {
	return s.useCounts()
}

// IsEnabled reports whether the template is enabled
// Without any configuration every template is enabled; with one, only an
// explicit false disables.
func (s *Templates) IsEnabled(id string) bool {
	enabled, configured := s.enabledMap()
	return enabledIn(enabled, configured, id)
}

func (s *Templates) SetEnabled(id string, enabled bool) {
	s.SetEnabledBulk(map[string]bool{id: enabled})
}

// SetEnabledBulk merges the given flags into the enabled-state map
func (s *Templates) SetEnabledBulk(flags map[string]bool) {
	enabled, _ := s.enabledMap()
	if enabled == nil {
		enabled = make(map[string]bool, len(flags))
	}
	for id, on := range flags {
		enabled[id] = on
	}
	s.doc.save(KeyEnabledTemplates, enabled)
}

// EnableAll drops the enabled-state configuration entirely
func (s *Templates) EnableAll() {
	s.doc.remove(KeyEnabledTemplates)
}

// DisableAllExcept writes an explicit flag for every listed template,
// true only for the ids in keep
func (s *Templates) DisableAllExcept(keep ...string) {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	enabled := make(map[string]bool)
	for _, e := range s.List() {
		enabled[e.ID] = keepSet[e.ID]
	}
	for id := range keepSet {
		enabled[id] = true
	}
	s.doc.save(KeyEnabledTemplates, enabled)
}

// EnabledIDs returns the ids of every enabled listed template in list order
func (s *Templates) EnabledIDs() []string {
	ids := []string{}
	for _, e := range s.List() {
		if e.IsEnabled {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// EnabledConfig returns the persisted enabled-state map, nil when unconfigured
func (s *Templates) EnabledConfig() map[string]bool {
	enabled, configured := s.enabledMap()
	if !configured {
		return nil
	}
	return enabled
}

// Categories returns the catalog categories in catalog order
func (s *Templates) Categories() []prompt.Category {
	return s.categories
}

// Category resolves a category id, falling back to prompt.OtherCategory
func (s *Templates) Category(id string) prompt.Category {
	for _, c := range s.categories {
		if c.ID == id {
			return c
		}
	}
	return prompt.OtherCategory
}

// CategoryName resolves a category id to its display name
func (s *Templates) CategoryName(id string) string {
	return s.Category(id).Name
}

func (s *Templates) customs() []prompt.Template {
	var customs []prompt.Template
	if !s.doc.load(KeyCustomTemplates, &customs) {
		return []prompt.Template{}
	}
	return customs
}

func (s *Templates) favorites() []string {
	var favorites []string
	if !s.doc.load(KeyFavorites, &favorites) {
		return []string{}
	}
	return favorites
}

func (s *Templates) favoriteSet() map[string]bool {
	set := make(map[string]bool)
	for _, id := range s.favorites() {
		set[id] = true
	}
	return set
}

func (s *Templates) useCounts() map[string]int {
	counts := make(map[string]int)
	if !s.doc.load(KeyUseCounts, &counts) || counts == nil {
		return make(map[string]int)
	}
	return counts
}

// enabledMap returns the stored flags and whether any configuration exists
func (s *Templates) enabledMap() (map[string]bool, bool) {
	var enabled map[string]bool
	if !s.doc.load(KeyEnabledTemplates, &enabled) || enabled == nil {
		return nil, false
	}
	return enabled, true
}

func enabledIn(enabled map[string]bool, configured bool, id string) bool {
	if !configured {
		return true
	}
	on, ok := enabled[id]
	return !ok || on
}
