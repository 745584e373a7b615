package assessment

import (
	"errors"
	"fmt"
)

// State is a view of the quiz widget
type State string

// Widget views
const (
	StateIntro   State = "intro"
	StateQuiz    State = "quiz"
	StateEmail   State = "email"
	StateResults State = "results"
)

// Event moves the widget between views
type Event string

// Widget events
const (
	EventStart       Event = "start"
	EventComplete    Event = "complete"
	EventSubmitEmail Event = "submit-email"
	EventSkipEmail   Event = "skip-email"
	EventRestart     Event = "restart"
)

// ErrInvalidTransition is returned for an event the current view does not accept
var ErrInvalidTransition = errors.New("invalid transition")

var transitions = map[State]map[Event]State{
	StateIntro: {
		EventStart: StateQuiz,
	},
	StateQuiz: {
		EventComplete: StateEmail,
		EventRestart:  StateIntro,
	},
	StateEmail: {
		EventSubmitEmail: StateResults,
		EventSkipEmail:   StateResults,
		EventRestart:     StateIntro,
	},
	StateResults: {
		EventRestart: StateIntro,
	},
}

// Flow tracks one visitor's position in the widget. It is driven by a single
// actor and is not safe for concurrent use.
type Flow struct {
	state State
}

// NewFlow starts a flow on the intro view
func NewFlow() *Flow {
	return &Flow{state: StateIntro}
}

// Current returns the current view
func (f *Flow) Current() State {
	return f.state
}

// Fire applies an event and returns the new view
func (f *Flow) Fire(e Event) (State, error) {
	next, ok := transitions[f.state][e]
	if !ok {
		return f.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, f.state)
	}
	f.state = next
	return next, nil
}

// Allowed lists the events the current view accepts, in a fixed order
func (f *Flow) Allowed() []Event {
	var out []Event
	for _, e := range []Event{EventStart, EventComplete, EventSubmitEmail, EventSkipEmail, EventRestart} {
		if _, ok := transitions[f.state][e]; ok {
			out = append(out, e)
		}
	}
	return out
}
