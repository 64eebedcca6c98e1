package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loopsim-dev/loopsim/task"
)

func TestParseLog(t *testing.T) {
	tasks := Parse(`console.log("hello")
console.log('world')`)
	require.Len(t, tasks, 2)
	require.Equal(t, task.Log, tasks[0].Kind)
	require.Equal(t, "hello", tasks[0].Content)
	require.Equal(t, "world", tasks[1].Content)
	require.Equal(t, 1, tasks[0].Line)
	require.Equal(t, 2, tasks[1].Line)
}

func TestParseTimerDelay(t *testing.T) {
	tasks := Parse(`setTimeout(() => {
  console.log('later')
}, 500)`)
	require.Len(t, tasks, 1)
	timer := tasks[0]
	require.Equal(t, task.Timer, timer.Kind)
	require.Equal(t, LabelTimer, timer.Label)
	require.Equal(t, 500, timer.Delay)
	require.Len(t, timer.Children, 1)
	require.Equal(t, "later", timer.Children[0].Content)
	require.Equal(t, 2, timer.Children[0].Line)
}

func TestParseTimerDefaultDelay(t *testing.T) {
	tasks := Parse(`setTimeout(() => {
  console.log('x')
})`)
	require.Len(t, tasks, 1)
	require.Equal(t, 0, tasks[0].Delay)
}

func TestParseImmediate(t *testing.T) {
	tasks := Parse(`setImmediate(() => {
  console.log('soon')
})`)
	require.Len(t, tasks, 1)
	// Zero-delay variant: distinct label for display, same kind.
	require.Equal(t, task.Timer, tasks[0].Kind)
	require.Equal(t, LabelImmediate, tasks[0].Label)
	require.Equal(t, 0, tasks[0].Delay)
}

func TestParseMicrotaskSpellings(t *testing.T) {
	source := `Promise.resolve().then(() => {
  console.log('a')
})
queueMicrotask(() => {
  console.log('b')
})
process.nextTick(() => {
  console.log('c')
})`
	tasks := Parse(source)
	require.Len(t, tasks, 3)
	labels := []string{LabelPromise, LabelMicrotask, LabelNextTick}
	for i, tk := range tasks {
		require.Equal(t, task.Microtask, tk.Kind)
		require.Equal(t, labels[i], tk.Label)
		require.Len(t, tk.Children, 1)
	}
}

func TestParseNested(t *testing.T) {
	source := `setTimeout(() => {
  console.log('outer')
  Promise.resolve().then(() => {
    console.log('inner')
  })
}, 100)`
	tasks := Parse(source)
	require.Len(t, tasks, 1)
	timer := tasks[0]
	require.Equal(t, 100, timer.Delay)
	require.Len(t, timer.Children, 2)
	require.Equal(t, task.Log, timer.Children[0].Kind)
	micro := timer.Children[1]
	require.Equal(t, task.Microtask, micro.Kind)
	require.Len(t, micro.Children, 1)
	require.Equal(t, "inner", micro.Children[0].Content)
}

func TestParseUnterminatedBodyTruncates(t *testing.T) {
	source := `setTimeout(() => {
  console.log('a')
  console.log('b')`
	tasks := Parse(source)
	require.Len(t, tasks, 1)
	require.Len(t, tasks[0].Children, 2)
	require.Equal(t, 0, tasks[0].Delay)
}

func TestParseSkipsUnrecognized(t *testing.T) {
	source := `console.log('a')
const x = 5

// a comment
console.log('b')`
	tasks := Parse(source)
	require.Len(t, tasks, 2)

	nonBlank := 0
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
	}
	require.Less(t, task.Count(tasks), nonBlank)
}

func TestParseTotalOnGarbage(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("}}}{{{\n)(\n"))
	require.Empty(t, Parse("setTimeout(run, 100)")) // not the lambda shape
}

func TestParseDeterministic(t *testing.T) {
	source := `console.log('A')
setTimeout(() => {
  queueMicrotask(() => {
    console.log('X')
  })
}, 50)
console.log('B')`
	a := Parse(source)
	b := Parse(source)
	require.True(t, task.EqualAll(a, b))
	// IDs restart per invocation.
	require.Equal(t, a[0].ID, b[0].ID)
}
