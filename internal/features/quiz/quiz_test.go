package quiz

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"serotonyl.ru/algopet/internal/clock"
	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// fixedPicker всегда выбирает один и тот же индекс.
type fixedPicker int

func (p fixedPicker) Intn(n int) int { return int(p) % n }

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestGate() (*Gate, *clock.Fake) {
	c := clock.NewFake(start)
	return NewGate(DefaultBank, fixedPicker(2), c, time.Second), c
}

func TestOpenRefusedWhenClean(t *testing.T) {
	g, _ := newTestGate()

	for _, cleanliness := range []int{80, 85, 100} {
		if _, err := g.Open(cleanliness); !errors.Is(err, common.ErrAlreadyClean) {
			t.Errorf("Open(%d): expected ErrAlreadyClean, got %v", cleanliness, err)
		}
	}
	if _, ok := g.Current(); ok {
		t.Error("Gate must stay idle after refusal")
	}
}

func TestOpenPicksFromBank(t *testing.T) {
	g, _ := newTestGate()

	s, err := g.Open(50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Question.Text != DefaultBank[2].Text {
		t.Errorf("Expected question #2, got %q", s.Question.Text)
	}
	if s.Selected != nil || s.Solved {
		t.Error("New session must have no selection")
	}
}

func TestOpenEmptyBank(t *testing.T) {
	g := NewGate([]Question{{Text: "сломан", Choices: []string{"a"}, Correct: 3}}, fixedPicker(0), clock.NewFake(start), 0)
	if _, err := g.Open(10); !errors.Is(err, common.ErrEmptyQuestionBank) {
		t.Errorf("Expected ErrEmptyQuestionBank, got %v", err)
	}
}

func TestAnswerWrongKeepsOpen(t *testing.T) {
	g, _ := newTestGate()
	g.Open(50)

	res, err := g.Answer(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Correct {
		t.Error("Expected wrong answer")
	}
	if res.Session.Feedback != "enqueue? Подумай ещё раз." {
		t.Errorf("Unexpected feedback: %q", res.Session.Feedback)
	}
	if res.Session.Selected == nil || *res.Session.Selected != 0 {
		t.Error("Expected selected index 0")
	}
	if _, ok := g.Current(); !ok {
		t.Error("Gate must stay open after a wrong answer")
	}
}

func TestAnswerCorrectAutoCloses(t *testing.T) {
	g, c := newTestGate()
	var expired []uint64
	g.OnExpire(func(id uint64) {
		expired = append(expired, id)
		g.Expire(id)
	})
	s, _ := g.Open(50)

	res, err := g.Answer(1)
	if err != nil || !res.Correct {
		t.Fatalf("Expected correct answer, got %+v, %v", res, err)
	}
	if _, err := g.Answer(1); !errors.Is(err, common.ErrNoActiveQuiz) {
		t.Errorf("Solved session must reject answers, got %v", err)
	}

	c.Advance(999 * time.Millisecond)
	if _, ok := g.Current(); !ok {
		t.Fatal("Session closed too early")
	}

	c.Advance(time.Millisecond)
	if _, ok := g.Current(); ok {
		t.Error("Session should be closed after the delay")
	}
	if len(expired) != 1 || expired[0] != s.ID {
		t.Errorf("Expected one expiry for session %d, got %v", s.ID, expired)
	}
}

func TestManualCloseCancelsTimer(t *testing.T) {
	g, c := newTestGate()
	fired := false
	g.OnExpire(func(uint64) { fired = true })
	g.Open(50)
	g.Answer(1)

	if !g.Close() {
		t.Fatal("Expected Close to report an open session")
	}
	c.Advance(time.Minute)

	if fired {
		t.Error("Timer must be cancelled on manual close")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
}

func TestExpireIgnoresStaleSession(t *testing.T) {
	g, _ := newTestGate()
	old, _ := g.Open(50)
	g.Close()
	fresh, _ := g.Open(50)

	if g.Expire(old.ID) {
		t.Error("Stale expiry must not close the new session")
	}
	if cur, ok := g.Current(); !ok || cur.ID != fresh.ID {
		t.Error("Fresh session must survive stale expiry")
	}
}

func TestAnswerErrors(t *testing.T) {
	g, _ := newTestGate()
	if _, err := g.Answer(0); !errors.Is(err, common.ErrNoActiveQuiz) {
		t.Errorf("Expected ErrNoActiveQuiz, got %v", err)
	}

	g.Open(50)
	for _, idx := range []int{-1, 4, 10} {
		if _, err := g.Answer(idx); !errors.Is(err, common.ErrInvalidChoice) {
			t.Errorf("Answer(%d): expected ErrInvalidChoice, got %v", idx, err)
		}
	}
	if cur, _ := g.Current(); cur.Selected != nil {
		t.Error("Invalid answer must not record a selection")
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	g, _ := newTestGate()
	g.Open(50)
	g.Answer(0)

	cur, _ := g.Current()
	*cur.Selected = 3
	cur.Question.Choices[0] = "испорчено"

	again, _ := g.Current()
	if *again.Selected != 0 || again.Question.Choices[0] != "enqueue" {
		t.Error("Current must return an independent copy")
	}
}

func TestOpenUniformOverBank(t *testing.T) {
	g := NewGate(DefaultBank, rand.New(rand.NewSource(7)), clock.NewFake(start), 0)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		s, err := g.Open(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		seen[s.Question.Text] = true
	}
	if len(seen) != len(DefaultBank) {
		t.Errorf("Expected all %d questions to appear, got %d", len(DefaultBank), len(seen))
	}
}

func TestRestoreClamps(t *testing.T) {
	s := pet.Defaults("", start, time.UTC)
	s.Cleanliness = 85
	later := start.Add(3 * time.Hour)

	gained := Restore(&s, QuizReward, later)

	if s.Cleanliness != 100 || gained != 15 {
		t.Errorf("Expected cleanliness 100 (+15), got %d (+%d)", s.Cleanliness, gained)
	}
	if !s.LastCleanlinessCheckAt.Equal(later) {
		t.Error("Expected checkpoint reset")
	}
}
