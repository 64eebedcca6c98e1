// Package engine holds the scheduling state of the simulated runtime
// and the two transitions that mutate it: a single observable step and
// a virtual-clock tick. Transitions are pure: they clone the input
// state and return the mutated clone, which makes replay and
// property testing straightforward.
package engine

import (
	"io"
	"slices"

	"github.com/shamaton/msgpack/v2"

	"github.com/loopsim-dev/loopsim/task"
)

// Frame is one call-stack entry: an instruction list plus a cursor.
// Body is a reference into the Task tree (or a queue entry's children),
// never a copy; two simultaneously-live frames never share one.
type Frame struct {
	ID     int
	Name   string
	Body   []*task.Task
	Cursor int
	Line   int // source line to highlight while idle at this frame
}

func (f *Frame) Clone() *Frame {
	out := *f
	return &out
}

// Done reports whether the frame has executed its whole body.
func (f *Frame) Done() bool {
	return f.Cursor >= len(f.Body)
}

// PendingTimer is a registered timer awaiting expiry in the web-API
// pending set. Remaining counts down under Tick events; Step never
// reads it.
type PendingTimer struct {
	Task      *task.Task
	CreatedAt int // virtual ms at registration
	Remaining int // virtual ms until promotion
}

func (p *PendingTimer) Clone() *PendingTimer {
	out := *p
	return &out
}

// State is a full snapshot of the runtime: call stack (last entry is
// active), pending timer set, both FIFO queues, the append-only output
// log, the finished flag, and the highlighted source line (0 = none).
type State struct {
	Stack      []*Frame
	Pending    []*PendingTimer
	Microtasks []*task.Task
	Macrotasks []*task.Task
	Log        []string
	Finished   bool
	Line       int
	Now        int // virtual clock, ms
	NextID     int // counter for frames and derived queue entries
}

// NewState seeds the engine with a single "main" frame over the
// top-level Task tree, modeling the synchronous script about to run.
func NewState(tree []*task.Task) *State {
	s := &State{}
	s.Stack = append(s.Stack, &Frame{
		ID:   s.newID(),
		Name: "main",
		Body: tree,
	})
	return s
}

func (s *State) newID() int {
	s.NextID++
	return s.NextID
}

// Top returns the active frame, or nil when the stack is empty.
func (s *State) Top() *Frame {
	if len(s.Stack) == 0 {
		return nil
	}
	return s.Stack[len(s.Stack)-1]
}

// Quiescent reports whether nothing is runnable right now: the stack
// and both queues are empty. With a non-empty pending set this is the
// idle condition; with an empty one it is the finished condition.
func (s *State) Quiescent() bool {
	return len(s.Stack) == 0 && len(s.Microtasks) == 0 && len(s.Macrotasks) == 0
}

func (s *State) Clone() *State {
	out := &State{
		Microtasks: slices.Clone(s.Microtasks),
		Macrotasks: slices.Clone(s.Macrotasks),
		Log:        slices.Clone(s.Log),
		Finished:   s.Finished,
		Line:       s.Line,
		Now:        s.Now,
		NextID:     s.NextID,
	}
	for _, f := range s.Stack {
		out.Stack = append(out.Stack, f.Clone())
	}
	for _, p := range s.Pending {
		out.Pending = append(out.Pending, p.Clone())
	}
	return out
}

func (s *State) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *State) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}
