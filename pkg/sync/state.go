package sync

import (
	"fmt"
	"time"
)

// State is a phase of a sync run.
type State int

// Sync run states in the order a successful run visits them.
const (
	Idle State = iota
	Loading
	Grouping
	Merging
	Committing
	Succeeded
	Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Loading:    "loading",
	Grouping:   "grouping",
	Merging:    "merging",
	Committing: "committing",
	Succeeded:  "succeeded",
	Failed:     "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether the run has finished.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// transitions lists the legal successors of each state. Merging may end in
// Succeeded directly for dry runs; Idle may fail when a run cannot start.
var transitions = map[State][]State{
	Idle:       {Loading, Failed},
	Loading:    {Grouping, Failed},
	Grouping:   {Merging, Failed},
	Merging:    {Committing, Succeeded, Failed},
	Committing: {Succeeded, Failed},
	Succeeded:  {Idle},
	Failed:     {Idle},
}

// Transition is one recorded state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Machine tracks the state of one run and its history.
type Machine struct {
	state   State
	history []Transition
	now     func() time.Time
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{now: time.Now}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// History returns a copy of the recorded transitions.
func (m *Machine) History() []Transition {
	return append([]Transition(nil), m.history...)
}

// Advance moves to next. Illegal transitions return an error and leave the
// machine unchanged.
func (m *Machine) Advance(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.history = append(m.history, Transition{From: m.state, To: next, At: m.now()})
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("illegal sync transition %s -> %s", m.state, next)
}

// MustAdvance is like Advance but panics on an illegal transition. Callers
// use it where the sequence of states is fixed by their own control flow.
func (m *Machine) MustAdvance(next State) {
	if err := m.Advance(next); err != nil {
		panic(err)
	}
}

// Fail moves to Failed from any non-terminal state.
func (m *Machine) Fail() {
	if m.state.Terminal() {
		return
	}
	_ = m.Advance(Failed)
}

// Reset returns a terminal machine to Idle, keeping the history.
func (m *Machine) Reset() {
	if m.state.Terminal() {
		_ = m.Advance(Idle)
	}
}
