package engine

import "fmt"

// EventKind selects which transition an Event requests.
type EventKind int

const (
	StepEvent EventKind = iota // execute one instruction or one dequeue
	TickEvent                  // advance the virtual clock
)

func (k EventKind) String() string {
	switch k {
	case StepEvent:
		return "Step"
	case TickEvent:
		return "Tick"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Event is one input to the transition function. Elapsed is only
// meaningful for TickEvent.
type Event struct {
	Kind    EventKind
	Elapsed int // virtual ms
}

func Step() Event { return Event{Kind: StepEvent} }

func Tick(elapsed int) Event { return Event{Kind: TickEvent, Elapsed: elapsed} }

// Apply is the pure transition: (state, event) -> new state. The
// receiver is never mutated; the returned clone carries the effect.
// Both transitions are total — any event in any reachable state is
// accepted, and events after Finished leave the state unchanged.
func (s *State) Apply(ev Event) *State {
	next := s.Clone()
	switch ev.Kind {
	case TickEvent:
		next.tick(ev.Elapsed)
	default:
		next.step()
	}
	return next
}
