package sim

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/loopsim-dev/loopsim/engine"
	"github.com/loopsim-dev/loopsim/task"
)

// FormatSnapshot renders a state for terminal display, call stack
// top-first.
func FormatSnapshot(s *engine.State) string {
	var b strings.Builder

	b.WriteString("Call Stack:\n")
	if len(s.Stack) == 0 {
		b.WriteString("  (empty)\n")
	}
	for i := len(s.Stack) - 1; i >= 0; i-- {
		f := s.Stack[i]
		marker := "  "
		if i == len(s.Stack)-1 {
			marker = "* "
		}
		b.WriteString(fmt.Sprintf("%s%s [%d/%d]\n", marker, f.Name, f.Cursor, len(f.Body)))
	}

	b.WriteString("Web APIs:\n")
	if len(s.Pending) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, p := range s.Pending {
		b.WriteString(fmt.Sprintf("  %s remaining=%dms\n", p.Task.Label, p.Remaining))
	}

	b.WriteString("Microtask Queue:\n")
	writeQueue(&b, s.Microtasks)
	b.WriteString("Macrotask Queue:\n")
	writeQueue(&b, s.Macrotasks)

	b.WriteString("Output:\n")
	if len(s.Log) == 0 {
		b.WriteString("  (empty)\n")
	}
	for _, line := range s.Log {
		b.WriteString(fmt.Sprintf("  %s\n", line))
	}

	if s.Finished {
		b.WriteString("Status: finished\n")
	} else if s.Line > 0 {
		b.WriteString(fmt.Sprintf("Status: running (line %d)\n", s.Line))
	} else {
		b.WriteString("Status: idle\n")
	}
	return b.String()
}

func writeQueue(b *strings.Builder, q []*task.Task) {
	if len(q) == 0 {
		b.WriteString("  (empty)\n")
		return
	}
	for i, t := range q {
		b.WriteString(fmt.Sprintf("  %d. %s (line %d)\n", i+1, t.Label, t.Line))
	}
}

// FormatReport renders a completed run's summary.
func FormatReport(r *Report) string {
	var b strings.Builder
	b.WriteString(color.Cyan.Sprint("Run complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Session:     %s\n", r.Session))
	b.WriteString(fmt.Sprintf("Fingerprint: 0x%x\n", r.Fingerprint))
	b.WriteString("Output:\n")
	for _, line := range r.Output {
		b.WriteString(fmt.Sprintf("  %s\n", line))
	}
	return b.String()
}

// FormatVerdict renders the prediction comparison.
func FormatVerdict(v Verdict) string {
	var b strings.Builder
	if v.Correct {
		b.WriteString(color.Green.Sprint("✓ Prediction matches the output log"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(color.Red.Sprint("✗ Prediction does not match"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Predicted: %s\n", strings.Join(v.Predicted, ", ")))
	b.WriteString(fmt.Sprintf("Actual:    %s\n", strings.Join(v.Actual, ", ")))
	return b.String()
}
