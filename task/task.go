package task

import "fmt"

// Kind classifies a parsed instruction.
type Kind int

const (
	Log       Kind = iota // synchronous log statement
	Timer                 // timer registration (delayed or zero-delay)
	Microtask             // microtask registration (any spelling)
	Main                  // wrapper for the top-level script
)

func (k Kind) String() string {
	switch k {
	case Log:
		return "Log"
	case Timer:
		return "Timer"
	case Microtask:
		return "Microtask"
	case Main:
		return "Main"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Task is one parsed instruction. Trees are immutable once the parser
// returns them; anything derived from a registration (a microtask queue
// entry, for example) is a freshly built Task, never a mutation.
type Task struct {
	ID      int
	Kind    Kind
	Label   string // originating call spelling, display only
	Content string // log payload
	Delay   int    // milliseconds, Timer only
	Line    int    // 1-based source line of the opening statement

	// Children is the callback body for Timer and Microtask
	// registrations. The slice is shared by reference with whatever
	// executes it; nobody writes through it.
	Children []*Task
}

// Logs extracts every Log content depth-first, in source order. This is
// the sequence the prediction game shuffles.
func Logs(tasks []*Task) []string {
	var out []string
	for _, t := range tasks {
		if t.Kind == Log {
			out = append(out, t.Content)
		}
		out = append(out, Logs(t.Children)...)
	}
	return out
}

// Count returns the total number of nodes in the forest.
func Count(tasks []*Task) int {
	n := 0
	for _, t := range tasks {
		n += 1 + Count(t.Children)
	}
	return n
}

// Equal reports structural equality ignoring IDs. Two parses of the
// same text are Equal even though their counters assigned IDs in
// whatever order the recursion visited them.
func Equal(a, b *Task) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Label != b.Label || a.Content != b.Content ||
		a.Delay != b.Delay || a.Line != b.Line {
		return false
	}
	return EqualAll(a.Children, b.Children)
}

// EqualAll reports structural equality of two forests ignoring IDs.
func EqualAll(a, b []*Task) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (t *Task) String() string {
	switch t.Kind {
	case Log:
		return fmt.Sprintf("%s(%q)", t.Label, t.Content)
	case Timer:
		return fmt.Sprintf("%s[%d children, delay=%d]", t.Label, len(t.Children), t.Delay)
	default:
		return fmt.Sprintf("%s[%d children]", t.Label, len(t.Children))
	}
}
