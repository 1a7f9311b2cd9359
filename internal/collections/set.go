package collections

// Set holds distinct comparable values.
type Set[T comparable] map[T]struct{}

func NewSet[T comparable](vs ...T) Set[T] {
	s := make(Set[T], len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Visit records v and reports whether it was not already present. Walkers use
// it to stop at the first repeated node.
func (s Set[T]) Visit(v T) bool {
	if s.Has(v) {
		return false
	}
	s[v] = struct{}{}
	return true
}
