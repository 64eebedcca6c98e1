// Package gen produces sample source text for the simulator. It is a
// pure template filler: the engine never looks at the flags, only at
// the emitted text.
package gen

import (
	"math/rand"
	"slices"
	"strings"
)

// Complexity selects the overall shape of the sample.
type Complexity int

const (
	Flat   Complexity = iota // every registration at top level
	Nested                   // async bodies register further work
)

// Features toggles which call shapes appear in the sample.
type Features struct {
	Log       bool
	Timer     bool
	Promise   bool
	Microtask bool
	NextTick  bool
	Immediate bool
}

// Generate returns source text valid under the parser grammar for the
// requested complexity and feature set.
func Generate(c Complexity, f Features) string {
	var b strings.Builder
	if f.Log {
		b.WriteString("console.log('Start')\n")
	}
	if c == Nested {
		writeNested(&b, f)
	} else {
		writeFlat(&b, f)
	}
	if f.Log {
		b.WriteString("console.log('End')\n")
	}
	return b.String()
}

func writeFlat(b *strings.Builder, f Features) {
	if f.Timer {
		b.WriteString("setTimeout(() => {\n")
		b.WriteString("  console.log('Timeout callback')\n")
		b.WriteString("}, 500)\n")
	}
	if f.Immediate {
		b.WriteString("setImmediate(() => {\n")
		b.WriteString("  console.log('Immediate callback')\n")
		b.WriteString("})\n")
	}
	if f.Promise {
		b.WriteString("Promise.resolve().then(() => {\n")
		b.WriteString("  console.log('Promise resolved')\n")
		b.WriteString("})\n")
	}
	if f.Microtask {
		b.WriteString("queueMicrotask(() => {\n")
		b.WriteString("  console.log('Microtask ran')\n")
		b.WriteString("})\n")
	}
	if f.NextTick {
		b.WriteString("process.nextTick(() => {\n")
		b.WriteString("  console.log('Next tick ran')\n")
		b.WriteString("})\n")
	}
}

func writeNested(b *strings.Builder, f Features) {
	if f.Timer {
		b.WriteString("setTimeout(() => {\n")
		b.WriteString("  console.log('Timeout callback')\n")
		if f.Promise {
			b.WriteString("  Promise.resolve().then(() => {\n")
			b.WriteString("    console.log('Promise inside timeout')\n")
			b.WriteString("  })\n")
		}
		if f.Microtask {
			b.WriteString("  queueMicrotask(() => {\n")
			b.WriteString("    console.log('Microtask inside timeout')\n")
			b.WriteString("  })\n")
		}
		b.WriteString("}, 300)\n")
	}
	if f.Immediate {
		b.WriteString("setImmediate(() => {\n")
		b.WriteString("  console.log('Immediate callback')\n")
		if f.NextTick {
			b.WriteString("  process.nextTick(() => {\n")
			b.WriteString("    console.log('Next tick inside immediate')\n")
			b.WriteString("  })\n")
		}
		b.WriteString("})\n")
	}
	if f.Promise && !f.Timer {
		b.WriteString("Promise.resolve().then(() => {\n")
		b.WriteString("  console.log('Promise resolved')\n")
		b.WriteString("})\n")
	}
	if f.Microtask && !f.Timer {
		b.WriteString("queueMicrotask(() => {\n")
		b.WriteString("  console.log('Microtask ran')\n")
		b.WriteString("})\n")
	}
	if f.NextTick && !f.Immediate {
		b.WriteString("process.nextTick(() => {\n")
		b.WriteString("  console.log('Next tick ran')\n")
		b.WriteString("})\n")
	}
}

// Shuffle returns a seeded permutation of items, leaving the input
// untouched. The prediction game hands the player this ordering to
// rearrange.
func Shuffle(items []string, seed int64) []string {
	out := slices.Clone(items)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
