package css

// Position represents a position in a text document
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in a text document
type Range struct {
	Start Position
	End   Position
}

// Problem is a syntax error in generated CSS
type Problem struct {
	Message string
	Range   Range
}

// Summary describes a CSS document
type Summary struct {
	Selectors    []string
	Declarations int
	Problems     []Problem
}

// Valid reports whether the document parsed without syntax errors
func (s *Summary) Valid() bool {
	return len(s.Problems) == 0
}
