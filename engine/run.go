package engine

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/loopsim-dev/loopsim/task"
)

// ErrBudgetExceeded is returned when RunToEnd hits its step budget
// before the engine reports finished.
var ErrBudgetExceeded = errors.New("engine: step budget exhausted before finish")

// RunToEnd drives a fresh engine over tree until it finishes,
// interleaving a virtual tick whenever nothing is runnable but timers
// are still pending. tickInterval is the elapsed value handed to each
// tick; maxSteps bounds the total number of applied events. The final
// state (complete or not) is always returned.
func RunToEnd(tree []*task.Task, tickInterval, maxSteps int) (*State, error) {
	s := NewState(tree)
	for i := 0; i < maxSteps; i++ {
		if s.Finished {
			log.Trace().Int("events", i).Int("log_len", len(s.Log)).Msg("RunToEnd: finished")
			return s, nil
		}
		if s.Quiescent() && len(s.Pending) > 0 {
			s = s.Apply(Tick(tickInterval))
			continue
		}
		s = s.Apply(Step())
	}
	if s.Finished {
		return s, nil
	}
	return s, ErrBudgetExceeded
}
