package diagnostics

import (
	"fmt"
	"strings"
)

// Snippet renders the source line the error points at, with its neighbours
// and a caret run under the offending text. Errors without a location render
// as an empty string.
func (e *Error) Snippet(source string) string {
	if e == nil || e.Context.IsZero() {
		return ""
	}
	lines := strings.Split(source, "\n")
	row := e.Context.Row
	if row < 1 {
		row = 1
	}
	if row > len(lines) {
		row = len(lines)
	}
	col := e.Context.Column
	if col < 1 {
		col = 1
	}
	width := e.Context.Length
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	if row > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", row-1, lines[row-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", row, lines[row-1])
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if row < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", row+1, lines[row])
	}
	return b.String()
}
