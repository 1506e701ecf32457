package model

// IDSet is an insertion-ordered set of todo ids.
// The zero value is ready to use.
type IDSet struct {
	order []ID
	index map[ID]int
}

// NewIDSet returns a set holding ids, duplicates collapsed.
func NewIDSet(ids ...ID) IDSet {
	var s IDSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Has(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s *IDSet) Add(id ID) bool {
	if s.Has(id) {
		return false
	}
	if s.index == nil {
		s.index = make(map[ID]int)
	}
	s.index[id] = len(s.order)
	s.order = append(s.order, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *IDSet) Remove(id ID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
	return true
}

// Toggle adds id if absent, removes it if present. It returns the new membership.
func (s *IDSet) Toggle(id ID) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

func (s IDSet) Len() int { return len(s.order) }

// Slice returns the ids in insertion order.
func (s IDSet) Slice() []ID {
	out := make([]ID, len(s.order))
	copy(out, s.order)
	return out
}

func (s IDSet) Clone() IDSet {
	return NewIDSet(s.order...)
}

// Clear drops every member.
func (s *IDSet) Clear() {
	s.order = nil
	s.index = nil
}
