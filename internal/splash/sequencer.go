// Package splash plays the intro image sequence before the dashboard mounts.
package splash

import (
	"sync"
	"time"
)

// GraceDelay is the pause between the last fade-out and OnFinish
const GraceDelay = 200 * time.Millisecond

// Phase is the sequencer's position within one image
type Phase int

const (
	// PhaseShowing keeps the current image fully visible
	PhaseShowing Phase = iota
	// PhaseHiding fades the current image out
	PhaseHiding
	// PhaseDone is terminal: every image has been shown
	PhaseDone
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseShowing:
		return "showing"
	case PhaseHiding:
		return "hiding"
	default:
		return "done"
	}
}

// State is a snapshot of the sequence. Index equals the image count once
// Phase is PhaseDone.
type State struct {
	Index   int
	Visible bool
	Phase   Phase
}

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the runtime timers
func RealClock() Clock {
	return realClock{}
}

// Options configures a Sequencer
type Options struct {
	Visible time.Duration
	Fade    time.Duration

	// OnChange receives every state transition, including the initial one
	OnChange func(State)
	// OnFinish runs once, GraceDelay after the sequence is done
	OnFinish func()
}

// Sequencer steps through n images: Showing(i), Hiding(i), then Showing(i+1)
// or Done. Every transition is a timer owned by the current state; entering a
// new state or calling Stop cancels it.
type Sequencer struct {
	n     int
	opts  Options
	clock Clock

	mu       sync.Mutex
	state    State
	gen      uint64
	pending  Timer
	started  bool
	stopped  bool
	finished bool

	// emitMu serializes transitions with their callbacks; taken before mu
	emitMu sync.Mutex
}

// New creates a sequencer for n images. A nil clock uses RealClock.
func New(n int, opts Options, clock Clock) *Sequencer {
	if n < 0 {
		n = 0
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Sequencer{n: n, opts: opts, clock: clock}
}

// Len returns the number of images in the sequence
func (s *Sequencer) Len() int {
	return s.n
}

// State returns the current state
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start enters Showing(0), or Done when there are no images. Calls after the
// first, or after Stop, do nothing.
func (s *Sequencer) Start() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	next := State{Index: 0, Visible: true, Phase: PhaseShowing}
	if s.n == 0 {
		next = State{Index: 0, Phase: PhaseDone}
	}
	gen := s.enter(next)
	s.mu.Unlock()

	s.emitChange(gen, next)
}

// Stop cancels every pending timer. No transition and no OnFinish follow it;
// a callback already running is not waited for.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.gen++
	s.cancelPending()
}

// Stopped reports whether Stop was called
func (s *Sequencer) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// enter switches to next and schedules its outgoing transition. Called with
// s.mu held.
func (s *Sequencer) enter(next State) uint64 {
	s.cancelPending()
	s.gen++
	s.state = next
	gen := s.gen

	switch next.Phase {
	case PhaseShowing:
		s.pending = s.clock.AfterFunc(s.opts.Visible, func() { s.advance(gen) })
	case PhaseHiding:
		s.pending = s.clock.AfterFunc(s.opts.Fade, func() { s.advance(gen) })
	case PhaseDone:
		s.pending = s.clock.AfterFunc(GraceDelay, func() { s.finish(gen) })
	}
	return gen
}

func (s *Sequencer) advance(gen uint64) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}

	cur := s.state
	var next State
	switch {
	case cur.Phase == PhaseShowing:
		next = State{Index: cur.Index, Visible: false, Phase: PhaseHiding}
	case cur.Phase == PhaseHiding && cur.Index+1 < s.n:
		next = State{Index: cur.Index + 1, Visible: true, Phase: PhaseShowing}
	case cur.Phase == PhaseHiding:
		next = State{Index: s.n, Visible: false, Phase: PhaseDone}
	default:
		s.mu.Unlock()
		return
	}
	nextGen := s.enter(next)
	s.mu.Unlock()

	s.emitChange(nextGen, next)
}

func (s *Sequencer) finish(gen uint64) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.stopped || gen != s.gen || s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.pending = nil
	s.mu.Unlock()

	if s.opts.OnFinish != nil && !s.isStale(gen) {
		s.opts.OnFinish()
	}
}

// emitChange runs OnChange unless the state was superseded meanwhile.
// Called with s.emitMu held.
func (s *Sequencer) emitChange(gen uint64, st State) {
	if s.opts.OnChange != nil && !s.isStale(gen) {
		s.opts.OnChange(st)
	}
}

func (s *Sequencer) isStale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped || gen != s.gen
}

func (s *Sequencer) cancelPending() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
