package split

import (
	"fmt"
	"strings"

	"github.com/tabsplit-dev/tabsplit/internal/money"
)

// IncompleteAssignmentError reports items that cannot be allocated: items
// with no participants assigned, or assignments that reference unknown
// items or participants. Allocation is all-or-nothing; the caller must
// complete the assignment and retry.
type IncompleteAssignmentError struct {
	Items []string // item names (or IDs when the name is unknown)
}

func (e IncompleteAssignmentError) Error() string {
	return fmt.Sprintf("the following items have not been assigned splits: %s",
		strings.Join(e.Items, ","))
}

// NegativeShareError reports a negative amount in a final breakdown field.
// Given non-negative inputs this is unreachable; it indicates a bug in the
// engine rather than bad input.
type NegativeShareError struct {
	ParticipantID string
	Field         string
	Amount        money.Money
}

func (e NegativeShareError) Error() string {
	return fmt.Sprintf("negative %s for participant %s: %s", e.Field, e.ParticipantID, e.Amount)
}
