package league

import "fmt"

// ModelError reports a malformed or insufficient league description. It is
// detected before any search is attempted.
type ModelError struct {
	Division string
	Reason   string
}

func (e *ModelError) Error() string {
	if e.Division == "" {
		return "invalid league: " + e.Reason
	}
	return fmt.Sprintf("invalid league: division %q %s", e.Division, e.Reason)
}
