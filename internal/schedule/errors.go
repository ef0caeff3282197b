package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// InfeasibleError means the league is well formed but no fixture list
// satisfies every hard rule.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return "no valid schedule: " + e.Reason
}

// SearchTimedOutError means the search budget ran out before any fixture
// list was found. A larger budget may succeed.
type SearchTimedOutError struct {
	Component string
	Elapsed   time.Duration
}

func (e *SearchTimedOutError) Error() string {
	return fmt.Sprintf("no schedule found for %s within the search budget (%s)", e.Component, e.Elapsed.Round(time.Millisecond))
}

// InvariantViolation reports a fixture list that breaks a hard rule after
// solving. It indicates a defect rather than a data problem.
type InvariantViolation struct {
	Problems []string
	trace    error
}

func newInvariantViolation(problems []string) *InvariantViolation {
	return &InvariantViolation{
		Problems: problems,
		trace:    eris.New("fixture list failed verification"),
	}
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("fixture list violates %d invariant(s): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Trace returns the stack captured where the violation was detected.
func (e *InvariantViolation) Trace() string {
	if e.trace == nil {
		return ""
	}
	return eris.ToString(e.trace, true)
}
