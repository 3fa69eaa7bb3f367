package model

import (
	"strings"
	"unicode"
)

// Category is a budget category as the ledger defines it. Classification
// may only ever produce names present in this set; unknown names are
// treated as no-match, never created.
type Category struct {
	ID     string
	Name   string
	Hidden bool
}

// CategorySet is the ledger's category list, fetched once per run and
// immutable for the run's duration.
type CategorySet struct {
	byName     map[string]string
	byID       map[string]string
	normalized map[string]string
	names      []string
}

// NewCategorySet builds a set from ledger categories, skipping hidden ones.
func NewCategorySet(categories []Category) *CategorySet {
	s := &CategorySet{
		byName:     make(map[string]string, len(categories)),
		byID:       make(map[string]string, len(categories)),
		normalized: make(map[string]string, len(categories)),
	}
	for _, c := range categories {
		if c.Hidden {
			continue
		}
		s.byName[c.Name] = c.ID
		s.byID[c.ID] = c.Name
		s.normalized[normalizeCategoryName(c.Name)] = c.Name
		s.names = append(s.names, c.Name)
	}
	return s
}

// Resolve maps a rule- or LLM-produced name to the canonical ledger
// category name. Exact match first, then a normalized comparison that
// ignores emoji and punctuation the ledger decorates names with.
func (s *CategorySet) Resolve(name string) (string, bool) {
	if _, ok := s.byName[name]; ok {
		return name, true
	}
	canonical, ok := s.normalized[normalizeCategoryName(name)]
	return canonical, ok
}

func normalizeCategoryName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IDFor returns the category ID for an exact name match.
func (s *CategorySet) IDFor(name string) (string, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// NameFor returns the category name for an ID.
func (s *CategorySet) NameFor(id string) (string, bool) {
	name, ok := s.byID[id]
	return name, ok
}

// Names returns all visible category names in ledger order.
func (s *CategorySet) Names() []string {
	return s.names
}

// Len returns the number of visible categories.
func (s *CategorySet) Len() int {
	return len(s.names)
}
