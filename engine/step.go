package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/loopsim-dev/loopsim/task"
)

// step performs exactly one observable unit of work: one instruction
// execution, one frame pop, or one dequeue — never more than one of
// any, which is what makes the simulation scrubbable.
func (s *State) step() {
	if frame := s.Top(); frame != nil {
		if frame.Done() {
			// The callback returned.
			s.Stack = s.Stack[:len(s.Stack)-1]
			s.Line = 0
			log.Trace().Str("frame", frame.Name).Int("stack_depth", len(s.Stack)).Msg("step: frame returned")
			return
		}
		inst := frame.Body[frame.Cursor]
		frame.Cursor++
		s.Line = inst.Line
		s.dispatch(inst)
		return
	}

	// Stack empty: consult the queues, microtasks strictly first.
	if len(s.Microtasks) > 0 {
		entry := s.Microtasks[0]
		s.Microtasks = s.Microtasks[1:]
		s.pushFrame(entry)
		log.Trace().Str("frame", entry.Label).Int("line", entry.Line).Msg("step: dequeued microtask")
		return
	}
	if len(s.Macrotasks) > 0 {
		entry := s.Macrotasks[0]
		s.Macrotasks = s.Macrotasks[1:]
		s.pushFrame(entry)
		log.Trace().Str("frame", entry.Label).Int("line", entry.Line).Msg("step: dequeued macrotask")
		return
	}
	if len(s.Pending) == 0 {
		s.Finished = true
		s.Line = 0
		log.Trace().Int("log_len", len(s.Log)).Msg("step: finished")
		return
	}
	// Idle: a pending timer may still arrive via a later tick.
	log.Trace().Int("pending", len(s.Pending)).Msg("step: idle")
}

// dispatch executes one instruction against the active frame. No kind
// pushes a frame; registrations return synchronously.
func (s *State) dispatch(inst *task.Task) {
	switch inst.Kind {
	case task.Log:
		s.Log = append(s.Log, inst.Content)
		log.Trace().Str("content", inst.Content).Int("line", inst.Line).Msg("step: log")
	case task.Timer:
		s.Pending = append(s.Pending, &PendingTimer{
			Task:      inst,
			CreatedAt: s.Now,
			Remaining: inst.Delay,
		})
		log.Trace().Str("label", inst.Label).Int("delay", inst.Delay).Int("line", inst.Line).Msg("step: timer registered")
	case task.Microtask:
		// A fresh Task wraps the registration's body; the original
		// tree node is never placed in a queue.
		s.Microtasks = append(s.Microtasks, &task.Task{
			ID:       s.newID(),
			Kind:     task.Microtask,
			Label:    inst.Label,
			Children: inst.Children,
			Line:     inst.Line,
		})
		log.Trace().Str("label", inst.Label).Int("line", inst.Line).Msg("step: microtask enqueued")
	default:
		log.Trace().Str("kind", inst.Kind.String()).Int("line", inst.Line).Msg("step: ignoring instruction")
	}
}

// pushFrame begins executing a queue entry's body with a fresh frame.
func (s *State) pushFrame(entry *task.Task) {
	s.Stack = append(s.Stack, &Frame{
		ID:   s.newID(),
		Name: entry.Label,
		Body: entry.Children,
		Line: entry.Line,
	})
	s.Line = entry.Line
}
