package expansion

import (
	"sort"
	"strings"
)

// Set is an immutable collection of node ids shown with their children
// visible. Every mutation returns a new Set; the zero value is an empty set.
//
// A Set is referenced through a pointer so that renderers can use its identity
// to tell whether the caller produced a new expansion state.
type Set struct {
	ids map[string]struct{}
}

var empty = &Set{}

// Empty returns the shared empty set.
func Empty() *Set {
	return empty
}

func New(ids ...string) *Set {
	s := &Set{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		s.ids[id] = struct{}{}
	}
	return s
}

// Parse reads the comma separated form produced by Encode.
func Parse(raw string) *Set {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return New()
	}
	return New(strings.Split(raw, ",")...)
}

func (s *Set) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the members in ascending order.
func (s *Set) IDs() []string {
	if s.Len() == 0 {
		return []string{}
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Set) Encode() string {
	return strings.Join(s.IDs(), ",")
}

func (s *Set) clone(extra int) *Set {
	out := &Set{ids: make(map[string]struct{}, s.Len()+extra)}
	if s != nil {
		for id := range s.ids {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

// Toggle flips membership of id. The receiver is left untouched.
func (s *Set) Toggle(id string) *Set {
	out := s.clone(1)
	if _, ok := out.ids[id]; ok {
		delete(out.ids, id)
	} else if id != "" {
		out.ids[id] = struct{}{}
	}
	return out
}

func (s *Set) With(ids ...string) *Set {
	out := s.clone(len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		out.ids[id] = struct{}{}
	}
	return out
}

func (s *Set) Without(ids ...string) *Set {
	out := s.clone(0)
	for _, id := range ids {
		delete(out.ids, id)
	}
	return out
}

func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
