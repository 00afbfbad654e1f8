package session

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/index"
	"docchat/internal/models"
)

type stubIndex struct{ count int }

func (s *stubIndex) Add(context.Context, []models.Chunk, [][]float32) error { return nil }
func (s *stubIndex) Query(context.Context, []float32, int) ([]string, error) {
	return nil, nil
}
func (s *stubIndex) Count(context.Context) (int, error) { return s.count, nil }

var _ index.Index = (*stubIndex)(nil)

func newIndexed(t *testing.T) *Session {
	t.Helper()
	s := &Session{ID: "test"}
	if err := s.Apply(IndexBuilt{Index: &stubIndex{}}); err != nil {
		t.Fatalf("IndexBuilt: %v", err)
	}
	return s
}

func TestInitialState(t *testing.T) {
	s := &Session{ID: "test"}
	if s.State() != StateUninitialized {
		t.Errorf("new session state = %v, want uninitialized", s.State())
	}
	if len(s.History()) != 0 {
		t.Error("new session should have empty history")
	}
}

func TestIndexBuiltTransitions(t *testing.T) {
	s := &Session{ID: "test"}

	first := &stubIndex{count: 1}
	if err := s.Apply(IndexBuilt{Index: first}); err != nil {
		t.Fatalf("IndexBuilt from uninitialized: %v", err)
	}
	if s.State() != StateIndexed {
		t.Errorf("state = %v, want indexed", s.State())
	}

	// Rebuilding replaces the handle and cancels a pending fallback.
	if err := s.Apply(FallbackAccepted{Question: "q"}); err != nil {
		t.Fatalf("FallbackAccepted: %v", err)
	}
	second := &stubIndex{count: 2}
	if err := s.Apply(IndexBuilt{Index: second}); err != nil {
		t.Fatalf("IndexBuilt from pending: %v", err)
	}
	if s.State() != StateIndexed {
		t.Errorf("state after rebuild = %v, want indexed", s.State())
	}
	if s.PendingQuestion() != "" {
		t.Error("rebuild should clear the pending question")
	}
	if s.index != second {
		t.Error("rebuild should replace the index handle")
	}
}

func TestAnsweredGrowsHistoryByTwo(t *testing.T) {
	s := newIndexed(t)

	for i := 0; i < 3; i++ {
		before := len(s.History())
		if err := s.Apply(Answered{Question: "q", Answer: "a"}); err != nil {
			t.Fatalf("Answered: %v", err)
		}
		h := s.History()
		if len(h) != before+2 {
			t.Fatalf("history length = %d, want %d", len(h), before+2)
		}
		if h[len(h)-2].Role != models.RoleUser || h[len(h)-2].Content != "q" {
			t.Error("second-to-last turn should be the user question")
		}
		if h[len(h)-1].Role != models.RoleAssistant || h[len(h)-1].Content != "a" {
			t.Error("last turn should be the assistant answer")
		}
	}
}

func TestAnsweredRequiresIndex(t *testing.T) {
	s := &Session{ID: "test"}
	err := s.Apply(Answered{Question: "q", Answer: "a"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Answered in uninitialized: err = %v, want ErrInvalidTransition", err)
	}
	if len(s.History()) != 0 {
		t.Error("failed event must not modify history")
	}
}

func TestWebFallbackOneShot(t *testing.T) {
	s := newIndexed(t)

	if err := s.Apply(FallbackAccepted{Question: "original question"}); err != nil {
		t.Fatalf("FallbackAccepted: %v", err)
	}
	if s.State() != StateWebFallbackPending {
		t.Fatalf("state = %v, want web_fallback_pending", s.State())
	}
	if s.PendingQuestion() != "original question" {
		t.Errorf("pending question = %q", s.PendingQuestion())
	}

	// The next question is answered via the web path regardless of its
	// content, and the flag clears unconditionally after exactly one.
	if err := s.Apply(WebAnswered{Question: "a totally different question", Answer: "web answer"}); err != nil {
		t.Fatalf("WebAnswered: %v", err)
	}
	if s.State() != StateIndexed {
		t.Errorf("state after web answer = %v, want indexed", s.State())
	}
	if s.PendingQuestion() != "" {
		t.Error("web answer should clear the pending question")
	}
	if len(s.History()) != 2 {
		t.Errorf("history length = %d, want 2", len(s.History()))
	}

	// A second web answer is not allowed.
	err := s.Apply(WebAnswered{Question: "again", Answer: "nope"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second WebAnswered: err = %v, want ErrInvalidTransition", err)
	}
}

func TestFallbackDeclined(t *testing.T) {
	s := newIndexed(t)
	if err := s.Apply(FallbackDeclined{}); err != nil {
		t.Fatalf("FallbackDeclined in indexed: %v", err)
	}
	if s.State() != StateIndexed {
		t.Errorf("decline changed state to %v", s.State())
	}

	uninit := &Session{ID: "test2"}
	if err := uninit.Apply(FallbackDeclined{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("FallbackDeclined in uninitialized: err = %v, want ErrInvalidTransition", err)
	}
}

func TestFallbackAcceptedRequiresIndexed(t *testing.T) {
	s := newIndexed(t)
	if err := s.Apply(FallbackAccepted{Question: "q1"}); err != nil {
		t.Fatal(err)
	}
	// Accepting again while pending is invalid.
	err := s.Apply(FallbackAccepted{Question: "q2"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("double accept: err = %v, want ErrInvalidTransition", err)
	}
	if s.PendingQuestion() != "q1" {
		t.Error("failed accept must not overwrite the pending question")
	}
}

func TestHistoryAccumulatesAcrossStates(t *testing.T) {
	s := newIndexed(t)
	mustApply := func(ev Event) {
		t.Helper()
		if err := s.Apply(ev); err != nil {
			t.Fatalf("%T: %v", ev, err)
		}
	}

	mustApply(Answered{Question: "q1", Answer: "a1"})
	mustApply(FallbackAccepted{Question: "q1"})
	mustApply(WebAnswered{Question: "q2", Answer: "a2"})
	mustApply(IndexBuilt{Index: &stubIndex{}})
	mustApply(Answered{Question: "q3", Answer: "a3"})

	h := s.History()
	if len(h) != 6 {
		t.Fatalf("history length = %d, want 6", len(h))
	}
	wantContents := []string{"q1", "a1", "q2", "a2", "q3", "a3"}
	for i, want := range wantContents {
		if h[i].Content != want {
			t.Errorf("turn %d = %q, want %q", i, h[i].Content, want)
		}
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	store := NewStore()

	s1, err := store.GetOrCreate("")
	if err != nil {
		t.Fatal(err)
	}
	if s1.ID == "" {
		t.Fatal("created session has no ID")
	}

	s2, err := store.GetOrCreate(s1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s2 != s1 {
		t.Error("GetOrCreate with a known ID should return the same session")
	}

	s3, err := store.GetOrCreate("unknown-id")
	if err != nil {
		t.Fatal(err)
	}
	if s3 == s1 {
		t.Error("unknown ID should create a fresh session")
	}

	store.Delete(s1.ID)
	if _, ok := store.Get(s1.ID); ok {
		t.Error("deleted session still present")
	}
}
