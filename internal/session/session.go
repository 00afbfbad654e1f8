// Package session holds the per-user conversation state: the current index
// handle and responder, the append-only chat history, and the one-shot web
// fallback flag. State changes go through an explicit reducer so the
// control flow is testable without an HTTP harness.
package session

import (
	"errors"
	"fmt"
	"sync"

	"docchat/internal/index"
	"docchat/internal/models"
	"docchat/internal/responder"
)

// State is the session lifecycle position.
type State int

const (
	// StateUninitialized means no documents have been processed yet. Any
	// question yields a warning, not a transition.
	StateUninitialized State = iota
	// StateIndexed means an index handle and responder are bound.
	StateIndexed
	// StateWebFallbackPending means the user accepted a web-answer offer;
	// the next question is answered without retrieval, exactly once.
	StateWebFallbackPending
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIndexed:
		return "indexed"
	case StateWebFallbackPending:
		return "web_fallback_pending"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned when an event is not legal in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Event is a state-machine input. Applying an event either mutates the
// session or fails with ErrInvalidTransition; it never partially applies.
type Event interface{ isEvent() }

// IndexBuilt binds a freshly built index and its responder, discarding any
// prior handle. Legal in every state.
type IndexBuilt struct {
	Index     index.Index
	Responder *responder.Responder
}

// Answered records one retrieval-augmented exchange.
type Answered struct {
	Question string
	Answer   string
}

// FallbackAccepted records that the user accepted the web-answer offer for
// the given question.
type FallbackAccepted struct {
	Question string
}

// FallbackDeclined records that the user declined the offer. No change.
type FallbackDeclined struct{}

// WebAnswered records the single web-backed exchange that consumes a
// pending fallback.
type WebAnswered struct {
	Question string
	Answer   string
}

func (IndexBuilt) isEvent()       {}
func (Answered) isEvent()         {}
func (FallbackAccepted) isEvent() {}
func (FallbackDeclined) isEvent() {}
func (WebAnswered) isEvent()      {}

// Session is one user's mutable conversation state. Callers hold the lock
// across a full interaction (read state, act, apply events).
type Session struct {
	ID string

	mu              sync.Mutex
	state           State
	history         []models.Turn
	pendingQuestion string
	index           index.Index
	responder       *responder.Responder
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// State returns the current lifecycle state. Caller holds the lock.
func (s *Session) State() State { return s.state }

// PendingQuestion returns the question that triggered an accepted fallback
// offer, or "" when none is pending. Caller holds the lock.
func (s *Session) PendingQuestion() string { return s.pendingQuestion }

// Responder returns the bound responder, nil when uninitialized. Caller
// holds the lock.
func (s *Session) Responder() *responder.Responder { return s.responder }

// History returns a copy of the chat history. Caller holds the lock.
func (s *Session) History() []models.Turn {
	out := make([]models.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Apply runs the reducer: (state, event) → state. History only ever grows;
// the fallback flag and pending question are set and cleared together.
func (s *Session) Apply(event Event) error {
	switch ev := event.(type) {
	case IndexBuilt:
		// Replacing the handle also cancels any pending fallback; the
		// offer was made against the discarded index.
		s.index = ev.Index
		s.responder = ev.Responder
		s.pendingQuestion = ""
		s.state = StateIndexed
		return nil

	case Answered:
		if s.state != StateIndexed {
			return fmt.Errorf("%w: answered in %s", ErrInvalidTransition, s.state)
		}
		s.history = models.AppendExchange(s.history, ev.Question, ev.Answer)
		return nil

	case FallbackAccepted:
		if s.state != StateIndexed {
			return fmt.Errorf("%w: fallback accepted in %s", ErrInvalidTransition, s.state)
		}
		s.pendingQuestion = ev.Question
		s.state = StateWebFallbackPending
		return nil

	case FallbackDeclined:
		if s.state != StateIndexed {
			return fmt.Errorf("%w: fallback declined in %s", ErrInvalidTransition, s.state)
		}
		return nil

	case WebAnswered:
		if s.state != StateWebFallbackPending {
			return fmt.Errorf("%w: web answer in %s", ErrInvalidTransition, s.state)
		}
		s.history = models.AppendExchange(s.history, ev.Question, ev.Answer)
		s.pendingQuestion = ""
		s.state = StateIndexed
		return nil

	default:
		return fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, event)
	}
}
