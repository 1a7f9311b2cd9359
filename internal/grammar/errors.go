package grammar

import "fmt"

// LookupError is raised (as a panic) when a rule refers to a table or key that
// does not exist. It indicates a malformed grammar, never bad input.
type LookupError struct {
	Table string
	Key   string
}

func (e *LookupError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("can't find table %s", e.Table)
	}
	return fmt.Sprintf("can't find token for key %s in %s", e.Key, e.Table)
}
