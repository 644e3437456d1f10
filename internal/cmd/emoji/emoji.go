// Package emoji provides the status symbols printed by commands.
package emoji

const (
	// Success marks a committed sync or import.
	Success = "✓"

	// Error marks a failed run.
	Error = "✗"

	// Warning marks a run that committed with skipped rows or unavailable
	// suppliers.
	Warning = "!"
)

// Status returns the symbol for a run outcome.
func Status(ok bool, soft int) string {
	switch {
	case !ok:
		return Error
	case soft > 0:
		return Warning
	default:
		return Success
	}
}
