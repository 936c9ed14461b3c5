package admission

import "strconv"

// formatAmount renders a base-units amount as a string, preserving
// precision the way the persistence layer's Amount column requires.
func formatAmount(amount int64) string {
	return strconv.FormatInt(amount, 10)
}
