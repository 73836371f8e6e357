// Package filter builds the category filter set and answers which items
// match a filter.
package filter

import (
	"strconv"
	"strings"

	"github.com/vbonduro/portfolio/internal/domain"
)

// Set is an ordered collection of categories unique by id. Index 0 is always
// the sentinel "all" entry.
type Set struct {
	cats []domain.CategoryRef
	ids  map[int]struct{}
}

// BuildFilterSet prepends the sentinel and adds each category whose id has
// not been seen yet. Input categories carrying the sentinel id are dropped.
func BuildFilterSet(categories []domain.CategoryRef) *Set {
	s := &Set{ids: make(map[int]struct{}, len(categories)+1)}
	s.add(domain.AllCategory())
	for _, c := range categories {
		s.add(c)
	}
	return s
}

func (s *Set) add(c domain.CategoryRef) {
	if _, seen := s.ids[c.ID]; seen {
		return
	}
	s.ids[c.ID] = struct{}{}
	s.cats = append(s.cats, c)
}

// Categories returns a copy of the set in order.
func (s *Set) Categories() []domain.CategoryRef {
	return append([]domain.CategoryRef(nil), s.cats...)
}

func (s *Set) Len() int { return len(s.cats) }

func (s *Set) Contains(id int) bool {
	_, ok := s.ids[id]
	return ok
}

// RolePrefix tags filter control values in rendered markup.
const RolePrefix = "filter-"

// ParseID converts a filter control value such as "5" or "filter-5" to its
// numeric id.
func ParseID(raw string) (int, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), RolePrefix)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SelectByFilter returns items unchanged for the sentinel id and otherwise
// the subsequence whose category id equals the parsed filter. A filter that
// does not parse matches nothing.
func SelectByFilter(items []domain.Item, raw string) []domain.Item {
	id, ok := ParseID(raw)
	if !ok {
		return []domain.Item{}
	}
	return SelectByID(items, id)
}

// SelectByID is SelectByFilter for an already parsed id.
func SelectByID(items []domain.Item, id int) []domain.Item {
	if id == domain.AllCategoryID {
		return items
	}
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.CategoryID == id {
			out = append(out, it)
		}
	}
	return out
}
