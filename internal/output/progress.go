package output

import (
	"fmt"
	"strings"
)

// Status formats a bracketed stage status line, e.g. "[Backfill] Starting...".
func Status(stage, format string, args ...any) string {
	label := StyleMuted.Render("[" + stage + "]")
	return fmt.Sprintf("%s %s", label, fmt.Sprintf(format, args...))
}

// Progress formats a batch progress line with a percentage, e.g.
// "[Backfill] Processed 3000/17234 (17.4%)".
func Progress(stage string, processed, total int) string {
	pct := 100.0
	if total > 0 {
		pct = float64(processed) / float64(total) * 100
	}
	return Status(stage, "Processed %d/%d (%.1f%%)", processed, total, pct)
}

// Done formats a completion line in the success style.
func Done(stage, format string, args ...any) string {
	label := StyleMuted.Render("[" + stage + "]")
	return fmt.Sprintf("%s %s", label, StyleSuccess.Render(fmt.Sprintf(format, args...)))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
