package autocalc

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Mode is the state of a Session.
type Mode int

const (
	// ModeAuto recomputes the result whenever an input changes.
	ModeAuto Mode = iota
	// ModeManual keeps the user's result untouched until Reset.
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "auto"
}

// Session tracks one editing session of a trade form. It starts in auto mode and moves
// to manual mode, for good, as soon as the user edits the result directly.
type Session struct {
	mu       sync.Mutex
	inputs   Inputs
	result   string
	mode     Mode
	closed   bool
	debounce *Debouncer
	onChange func(result string)
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = NewDebouncer(d) }
}

// WithOnChange registers a callback invoked with every auto-computed result that differs
// from the current one. It runs on the debounce timer's goroutine.
func WithOnChange(fn func(result string)) Option {
	return func(s *Session) { s.onChange = fn }
}

// NewSession starts a session from the form's current values.
func NewSession(inputs Inputs, result string, opts ...Option) *Session {
	s := &Session{inputs: inputs, result: result}
	for _, opt := range opts {
		opt(s)
	}
	if s.debounce == nil {
		s.debounce = NewDebouncer(DefaultDebounce)
	}
	return s
}

// Update records new input values. In auto mode a change schedules a recomputation.
func (s *Session) Update(inputs Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	changed := inputs != s.inputs
	s.inputs = inputs
	if !changed || s.mode == ModeManual {
		return
	}
	s.debounce.Trigger(s.recompute)
}

// MarkManual switches to manual mode, e.g. when the result field gains focus.
func (s *Session) MarkManual() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeManual
	s.debounce.Cancel()
}

// SetResult stores a result typed by the user and switches to manual mode.
func (s *Session) SetResult(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeManual
	s.result = result
	s.debounce.Cancel()
}

// Reset starts a new editing session with fresh values, back in auto mode.
func (s *Session) Reset(inputs Inputs, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce.Cancel()
	s.inputs = inputs
	s.result = result
	s.mode = ModeAuto
}

// Flush applies a pending recomputation immediately, e.g. when the form is submitted.
func (s *Session) Flush() {
	s.debounce.Flush()
}

// Close cancels any pending recomputation. The session ignores all later updates.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.debounce.Stop()
}

// Result returns the current result value.
func (s *Session) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) recompute() {
	s.mu.Lock()
	if s.closed || s.mode == ModeManual {
		s.mu.Unlock()
		return
	}
	result, ok := Compute(s.inputs)
	if !ok || result == s.result {
		s.mu.Unlock()
		return
	}
	s.result = result
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(result)
	}
}
