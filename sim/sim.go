// Package sim owns a live engine state and serializes every writer
// against it: manual steps, auto-run steps, timer ticks, and resets all
// go through one mutex, so neither transition can observe the other
// half-applied.
package sim

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/loopsim-dev/loopsim/engine"
	"github.com/loopsim-dev/loopsim/parser"
	"github.com/loopsim-dev/loopsim/task"
)

// ErrAutoRunning is returned when StartAuto is called while an
// auto-run is already active.
var ErrAutoRunning = errors.New("sim: auto-run already active")

// Simulator drives one engine over one source text.
type Simulator struct {
	mu      sync.Mutex
	session string
	source  string
	tree    []*task.Task
	state   *engine.State

	autoStop chan struct{}
	autoDone chan struct{}
}

// New parses source and seeds a simulator at the initial state.
func New(source string) *Simulator {
	tree := parser.Parse(source)
	return &Simulator{
		session: uuid.NewString(),
		source:  source,
		tree:    tree,
		state:   engine.NewState(tree),
	}
}

// Session identifies this simulator instance in reports.
func (s *Simulator) Session() string { return s.session }

// Tree returns the parsed Task tree seeding the current run.
func (s *Simulator) Tree() []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// ExpectedLogs is the depth-first Log sequence of the tree — the raw
// material the prediction game shuffles.
func (s *Simulator) ExpectedLogs() []string {
	return task.Logs(s.Tree())
}

// Step applies one engine step and returns the resulting snapshot.
func (s *Simulator) Step() *engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Apply(engine.Step())
	return s.state.Clone()
}

// Tick advances the virtual clock by elapsed ms and returns the
// resulting snapshot.
func (s *Simulator) Tick(elapsed int) *engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Apply(engine.Tick(elapsed))
	return s.state.Clone()
}

// Snapshot returns a copy of the current state for external rendering.
func (s *Simulator) Snapshot() *engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Finished reports whether the engine reached its terminal condition.
func (s *Simulator) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Finished
}

// Reset discards all mutable state and rebuilds it from a re-parse of
// the current text. Any active auto-run is stopped first, so no stale
// scheduled step or tick can land on the fresh state. Safe to call
// mid-run.
func (s *Simulator) Reset() {
	s.StopAuto()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = parser.Parse(s.source)
	s.state = engine.NewState(s.tree)
	log.Debug().Str("session", s.session).Msg("simulator reset")
}

// Load replaces the source text and resets.
func (s *Simulator) Load(source string) {
	s.StopAuto()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
	s.tree = parser.Parse(source)
	s.state = engine.NewState(s.tree)
}

// StartAuto begins auto-run mode: steps on one cadence, virtual ticks
// on another, both applied through the simulator's mutex from a single
// goroutine.
func (s *Simulator) StartAuto(stepEvery, tickEvery time.Duration) error {
	s.mu.Lock()
	if s.autoStop != nil {
		s.mu.Unlock()
		return ErrAutoRunning
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.autoStop = stop
	s.autoDone = done
	s.mu.Unlock()
	go s.autoLoop(stepEvery, tickEvery, stop, done)
	return nil
}

func (s *Simulator) autoLoop(stepEvery, tickEvery time.Duration, stop, done chan struct{}) {
	defer close(done)
	stepTicker := time.NewTicker(stepEvery)
	defer stepTicker.Stop()
	tickTicker := time.NewTicker(tickEvery)
	defer tickTicker.Stop()
	elapsed := int(tickEvery / time.Millisecond)
	for {
		select {
		case <-stop:
			return
		case <-stepTicker.C:
			s.Step()
		case <-tickTicker.C:
			s.Tick(elapsed)
		}
	}
}

// StopAuto disables auto-run and waits for the driver goroutine to
// drain. Stopping means no further steps or ticks get scheduled; it
// never interrupts a transition in progress. Idempotent.
func (s *Simulator) StopAuto() {
	s.mu.Lock()
	stop, done := s.autoStop, s.autoDone
	s.autoStop, s.autoDone = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Report summarizes a completed run.
type Report struct {
	Session     string
	Output      []string
	Finished    bool
	Fingerprint uint64
}

// RunToEnd restarts from the initial state and drives the engine to
// quiescence synchronously, leaving the simulator at the final state.
func (s *Simulator) RunToEnd(tickInterval, maxSteps int) (*Report, error) {
	s.StopAuto()
	s.mu.Lock()
	defer s.mu.Unlock()
	final, err := engine.RunToEnd(s.tree, tickInterval, maxSteps)
	s.state = final
	if err != nil {
		return nil, err
	}
	return s.report(final)
}

// ReportNow summarizes the current state without driving it further.
func (s *Simulator) ReportNow() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report(s.state)
}

func (s *Simulator) report(st *engine.State) (*Report, error) {
	fp, err := st.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &Report{
		Session:     s.session,
		Output:      slices.Clone(st.Log),
		Finished:    st.Finished,
		Fingerprint: fp,
	}, nil
}

// Verdict is the prediction game's whole-sequence comparison result.
type Verdict struct {
	Correct   bool
	Predicted []string
	Actual    []string
}

// CheckPrediction compares a predicted ordering against the current
// output log using exact equality. Informational only — a mismatch is
// not an error of the core.
func (s *Simulator) CheckPrediction(order []string) Verdict {
	actual := slices.Clone(s.Snapshot().Log)
	return Verdict{
		Correct:   slices.Equal(order, actual),
		Predicted: slices.Clone(order),
		Actual:    actual,
	}
}
