// Package parser turns raw source text into a Task tree. It recognizes
// exactly four call shapes from a JS-like surface grammar and silently
// skips everything else; parsing never fails.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/loopsim-dev/loopsim/task"
)

// Display labels recorded on parsed tasks. The microtask spellings are
// scheduling-equivalent; the label only drives rendering.
const (
	LabelLog       = "console.log"
	LabelTimer     = "setTimeout"
	LabelImmediate = "setImmediate"
	LabelPromise   = "Promise.then"
	LabelMicrotask = "queueMicrotask"
	LabelNextTick  = "process.nextTick"
)

var (
	logRe       = regexp.MustCompile(`^\s*console\.log\(\s*(?:"([^"]*)"|'([^']*)')\s*\)`)
	timerRe     = regexp.MustCompile(`^\s*setTimeout\(\s*\(\s*\)\s*=>\s*\{\s*$`)
	immediateRe = regexp.MustCompile(`^\s*setImmediate\(\s*\(\s*\)\s*=>\s*\{\s*$`)
	promiseRe   = regexp.MustCompile(`^\s*Promise\.resolve\(\s*\)\.then\(\s*\(\s*\)\s*=>\s*\{\s*$`)
	microRe     = regexp.MustCompile(`^\s*queueMicrotask\(\s*\(\s*\)\s*=>\s*\{\s*$`)
	nextTickRe  = regexp.MustCompile(`^\s*process\.nextTick\(\s*\(\s*\)\s*=>\s*\{\s*$`)
	delayRe     = regexp.MustCompile(`\}\s*,\s*(\d+)\s*\)`)
)

// parser owns the ID counter for exactly one Parse invocation, so
// repeated or concurrent parses never interfere with each other.
type parser struct {
	nextID int
}

// Parse extracts the top-level ordered Task sequence from source. Two
// calls on identical text yield trees equal up to ID relabeling.
func Parse(source string) []*task.Task {
	p := &parser{}
	lines := strings.Split(source, "\n")
	return p.parseRange(lines, 0, len(lines))
}

func (p *parser) newID() int {
	p.nextID++
	return p.nextID
}

// parseRange parses lines[lo:hi] into an ordered Task sequence. Nested
// bodies recurse over strictly smaller explicit ranges; there is no
// shared cursor between recursive calls.
func (p *parser) parseRange(lines []string, lo, hi int) []*task.Task {
	var tasks []*task.Task
	i := lo
	for i < hi {
		line := lines[i]

		if m := logRe.FindStringSubmatch(line); m != nil {
			content := m[1]
			if m[1] == "" && m[2] != "" {
				content = m[2]
			}
			tasks = append(tasks, &task.Task{
				ID:      p.newID(),
				Kind:    task.Log,
				Label:   LabelLog,
				Content: content,
				Line:    i + 1,
			})
			i++
			continue
		}

		if kind, label, ok := openerShape(line); ok {
			end := findBodyEnd(lines, i+1, hi)
			bodyHi := end
			if end == -1 {
				// Unterminated body: truncate to whatever is left.
				bodyHi = hi
			}
			t := &task.Task{
				ID:    p.newID(),
				Kind:  kind,
				Label: label,
				Line:  i + 1,
			}
			t.Children = p.parseRange(lines, i+1, bodyHi)
			if kind == task.Timer && label == LabelTimer && end != -1 {
				t.Delay = parseDelay(lines[end])
			}
			tasks = append(tasks, t)
			if end == -1 {
				i = hi
			} else {
				i = end + 1
			}
			continue
		}

		// Blank, comment, or unsupported statement: no Task, no
		// diagnostic.
		i++
	}
	return tasks
}

// openerShape classifies a line that opens a callback body.
func openerShape(line string) (task.Kind, string, bool) {
	switch {
	case timerRe.MatchString(line):
		return task.Timer, LabelTimer, true
	case immediateRe.MatchString(line):
		return task.Timer, LabelImmediate, true
	case promiseRe.MatchString(line):
		return task.Microtask, LabelPromise, true
	case microRe.MatchString(line):
		return task.Microtask, LabelMicrotask, true
	case nextTickRe.MatchString(line):
		return task.Microtask, LabelNextTick, true
	}
	return 0, "", false
}

// findBodyEnd scans lines[lo:hi] for the line on which the brace
// balance, started at 1 by the opener, returns to 0. The count is
// textual over every brace character on the line; braces inside string
// literals are not distinguished. Returns -1 when the body never
// closes inside the range.
func findBodyEnd(lines []string, lo, hi int) int {
	depth := 1
	for i := lo; i < hi; i++ {
		depth += strings.Count(lines[i], "{")
		depth -= strings.Count(lines[i], "}")
		if depth <= 0 {
			return i
		}
	}
	return -1
}

// parseDelay recovers the numeric delay argument from a timer's closing
// line, defaulting to 0 when absent or unparsable.
func parseDelay(line string) int {
	m := delayRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	d, err := strconv.Atoi(m[1])
	if err != nil || d < 0 {
		return 0
	}
	return d
}
