package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chriscorrea/workbench/internal/storage"
)

// DefaultSnippets seeds the snippet list until the user changes it
var DefaultSnippets = []string{
	"Be concise.",
	"Think step by step.",
	"Explain your reasoning.",
	"Use bullet points.",
	"Include examples.",
	"Cite your sources.",
}

// Snippets is an ordered list of unique reusable text fragments
type Snippets struct {
	doc doc
}

// NewSnippets creates a snippet store
func NewSnippets(kv storage.KV, logger *slog.Logger) *Snippets {
	return &Snippets{doc: newDoc(kv, logger)}
}

// List returns the snippets in display order
// The seed list is returned when nothing usable is stored.
func (s *Snippets) List() []string {
	var snippets []string
	if !s.doc.load(KeySnippets, &snippets) || snippets == nil {
		return defaults()
	}
	return snippets
}

// Add appends text after trimming it
func (s *Snippets) Add(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("snippet %w", ErrEmpty)
	}

	snippets := s.List()
	if indexOf(snippets, text) >= 0 {
		return fmt.Errorf("snippet %q %w", text, ErrDuplicate)
	}

	s.doc.save(KeySnippets, append(snippets, text))
	return nil
}

// Update replaces old with the trimmed text, keeping its position
func (s *Snippets) Update(old, text string) error {
	snippets := s.List()
	i := indexOf(snippets, old)
	if i < 0 {
		return fmt.Errorf("snippet %q %w", old, ErrNotFound)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("snippet %w", ErrEmpty)
	}
	if j := indexOf(snippets, text); j >= 0 && j != i {
		return fmt.Errorf("snippet %q %w", text, ErrDuplicate)
	}

	snippets[i] = text
	s.doc.save(KeySnippets, snippets)
	return nil
}

// Delete removes text
func (s *Snippets) Delete(text string) error {
	snippets := s.List()
	i := indexOf(snippets, text)
	if i < 0 {
		return fmt.Errorf("snippet %q %w", text, ErrNotFound)
	}

	s.doc.save(KeySnippets, append(snippets[:i], snippets[i+1:]...))
	return nil
}

// MoveUp swaps text with its predecessor; false when it is first or absent
func (s *Snippets) MoveUp(text string) bool {
	return s.move(text, -1)
}

// MoveDown swaps text with its successor; false when it is last or absent
func (s *Snippets) MoveDown(text string) bool {
	return s.move(text, 1)
}

func (s *Snippets) move(text string, delta int) bool {
	snippets := s.List()
	i := indexOf(snippets, text)
	j := i + delta
	if i < 0 || j < 0 || j >= len(snippets) {
		return false
	}

	snippets[i], snippets[j] = snippets[j], snippets[i]
	s.doc.save(KeySnippets, snippets)
	return true
}

// Reset replaces the list with the seed snippets
func (s *Snippets) Reset() {
	s.doc.save(KeySnippets, defaults())
}

func defaults() []string {
	return append([]string(nil), DefaultSnippets...)
}

func indexOf(list []string, text string) int {
	for i, item := range list {
		if item == text {
			return i
		}
	}
	return -1
}
