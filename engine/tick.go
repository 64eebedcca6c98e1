package engine

import "github.com/rs/zerolog/log"

// tick is the timer advancer: the sole path by which entries leave the
// pending set for the macrotask queue. Expired timers promote in
// registration order, so promotion time alone fixes macrotask FIFO
// order; delay magnitude never reorders anything after promotion.
// setImmediate and setTimeout(0) promote identically — the label
// difference is display only.
func (s *State) tick(elapsed int) {
	s.Now += elapsed
	if len(s.Pending) == 0 {
		return
	}
	remaining := s.Pending[:0:0]
	for _, p := range s.Pending {
		if p.Remaining <= 0 {
			s.Macrotasks = append(s.Macrotasks, p.Task)
			log.Trace().Str("label", p.Task.Label).Int("created_at", p.CreatedAt).Msg("tick: timer promoted")
			continue
		}
		p.Remaining -= elapsed
		remaining = append(remaining, p)
	}
	s.Pending = remaining
}
