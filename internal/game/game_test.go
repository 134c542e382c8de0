package game

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"serotonyl.ru/algopet/internal/clock"
	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/db/memory"
	"serotonyl.ru/algopet/internal/features/eventlog"
	"serotonyl.ru/algopet/internal/features/pet"
	"serotonyl.ru/algopet/internal/features/progression"
	"serotonyl.ru/algopet/internal/features/quiz"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedPicker int

func (p fixedPicker) Intn(n int) int { return int(p) % n }

type fakePresenter struct {
	renders   int
	thoughts  []string
	reminders []string
	quiz      []*quiz.Session
}

func (p *fakePresenter) Render(context.Context, View) { p.renders++ }

func (p *fakePresenter) Thought(_ context.Context, text string) {
	p.thoughts = append(p.thoughts, text)
}

func (p *fakePresenter) Reminder(_ context.Context, text string) {
	p.reminders = append(p.reminders, text)
}

func (p *fakePresenter) QuizChanged(_ context.Context, s *quiz.Session) {
	p.quiz = append(p.quiz, s)
}

type fakeScheduler struct{ starts, stops int }

func (s *fakeScheduler) Start() error {
	s.starts++
	return nil
}

func (s *fakeScheduler) Stop() { s.stops++ }

type harness struct {
	game      *Game
	clock     *clock.Fake
	presenter *fakePresenter
	repo      *memory.SaveRepository
}

func newHarness(t *testing.T, seed func(*pet.PetState)) *harness {
	t.Helper()
	repo := memory.NewSaveRepository()
	if seed != nil {
		s := pet.Defaults("", t0, time.UTC)
		seed(&s)
		blob, err := pet.Encode(s)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		repo.Put(blob)
	}

	c := clock.NewFake(t0)
	p := &fakePresenter{}
	g := New(context.Background(), Deps{Clock: c, Persistence: repo, Presenter: p}, Options{
		Location:          time.UTC,
		Picker:            fixedPicker(2),
		QuizAutoClose:     1200 * time.Millisecond,
		ReminderThreshold: 3,
		FoodPrice:         10,
	})
	return &harness{game: g, clock: c, presenter: p, repo: repo}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.game.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestStartFreshGame(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	s := h.game.Snapshot()
	if len(s.Events) != 1 || s.Events[0].Message != "Алгокот отправился в приключение!" {
		t.Errorf("Expected start event, got %+v", s.Events)
	}
	if h.repo.Saves() != 1 {
		t.Errorf("Expected state to be saved once, got %d", h.repo.Saves())
	}
	if len(h.presenter.thoughts) != 1 || h.presenter.thoughts[0] != "Счастье! Наелся от души~" {
		t.Errorf("Expected hunger thought on start, got %v", h.presenter.thoughts)
	}

	h.game.Stop(context.Background())
	h.start(t)
	if n := len(h.game.Snapshot().Events); n != 1 {
		t.Errorf("Restart must not log a second start event, got %d events", n)
	}
}

func TestFeedLevelUpScenario(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	if _, err := h.game.Feed(context.Background(), 5); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	s := h.game.Snapshot()
	if s.Level != 2 || s.Experience != 0 || s.ExperienceToNext != 141 || s.Coins != 50 {
		t.Errorf("Expected level 2 / exp 0 / next 141 / coins 50, got %d / %d / %d / %d",
			s.Level, s.Experience, s.ExperienceToNext, s.Coins)
	}
	if s.FoodStock != 0 {
		t.Errorf("Expected food stock 0, got %d", s.FoodStock)
	}
	if s.Events[0].Message != "Покормили питомца: 5 порций." {
		t.Errorf("Expected fed event first, got %q", s.Events[0].Message)
	}
	if s.Events[1].Message != "Достигнут ур. 2! Поздравляем!" {
		t.Errorf("Expected level-up event second, got %q", s.Events[1].Message)
	}
	if last := h.presenter.thoughts[len(h.presenter.thoughts)-1]; last != "Новый уровень! Ур. 2!" {
		t.Errorf("Expected level-up thought, got %q", last)
	}
}

func TestFeedNotEnoughFoodOnlyLogs(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)

	for amount := 6; amount <= 20; amount++ {
		before := h.game.Snapshot()

		_, err := h.game.Feed(context.Background(), amount)
		if !errors.Is(err, common.ErrNotEnoughFood) {
			t.Fatalf("Feed(%d): expected ErrNotEnoughFood, got %v", amount, err)
		}

		after := h.game.Snapshot()
		wantEvents := min(len(before.Events)+1, eventlog.MaxEntries)
		if len(after.Events) != wantEvents {
			t.Fatalf("Feed(%d): expected %d events, got %d", amount, wantEvents, len(after.Events))
		}
		after.Events = before.Events
		if !reflect.DeepEqual(before, after) {
			t.Fatalf("Feed(%d) changed more than the event log:\nbefore %+v\nafter  %+v", amount, before, after)
		}
	}
}

func TestFeedInvalidAmount(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	before := len(h.game.Snapshot().Events)

	if _, err := h.game.Feed(context.Background(), 0); !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
	if len(h.game.Snapshot().Events) != before {
		t.Error("Invalid amount must not log events")
	}
}

func TestDebuffLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()

	h.clock.Advance(13 * time.Hour)
	h.game.Tick(ctx)

	s := h.game.Snapshot()
	if !s.DebuffActive || s.Events[0].Message != progression.DebuffActivatedMessage {
		t.Fatalf("Expected debuff activation, got flag %v events %+v", s.DebuffActive, s.Events)
	}
	if s.Cleanliness != 51 {
		t.Errorf("Expected cleanliness 90-39=51, got %d", s.Cleanliness)
	}

	count := len(s.Events)
	h.game.Tick(ctx)
	if len(h.game.Snapshot().Events) != count {
		t.Error("Repeated tick must not log the debuff again")
	}

	if _, err := h.game.Feed(ctx, 1); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	s = h.game.Snapshot()
	if s.Experience != 12 {
		t.Errorf("Expected halved experience 12, got %d", s.Experience)
	}
	if s.DebuffActive {
		t.Error("Expected debuff cleared after feeding")
	}
	if s.Events[0].Message != progression.DebuffClearedMessage || s.Events[1].Message != "Покормили питомца: 1 порция." {
		t.Errorf("Unexpected event order: %q, %q", s.Events[0].Message, s.Events[1].Message)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()

	steps := []struct {
		advance    time.Duration
		wantStreak int
		wantBest   int
	}{
		{0, 1, 1},
		{24 * time.Hour, 2, 2},
		{time.Hour, 2, 2},
		{72 * time.Hour, 1, 2},
	}
	for i, st := range steps {
		h.clock.Advance(st.advance)
		if _, err := h.game.Feed(ctx, 1); err != nil {
			t.Fatalf("Step %d: feed failed: %v", i, err)
		}
		s := h.game.Snapshot()
		if s.FeedStreak != st.wantStreak || s.BestFeedStreak != st.wantBest {
			t.Errorf("Step %d: expected streak %d/%d, got %d/%d",
				i, st.wantStreak, st.wantBest, s.FeedStreak, s.BestFeedStreak)
		}
	}
}

func TestBuyFood(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Coins = 25 })
	h.start(t)
	ctx := context.Background()

	if _, err := h.game.BuyFood(ctx, 2); err != nil {
		t.Fatalf("BuyFood failed: %v", err)
	}
	s := h.game.Snapshot()
	if s.Coins != 5 || s.FoodStock != 7 {
		t.Errorf("Expected coins 5 food 7, got %d %d", s.Coins, s.FoodStock)
	}

	if _, err := h.game.BuyFood(ctx, 1); !errors.Is(err, common.ErrNotEnoughCoins) {
		t.Errorf("Expected ErrNotEnoughCoins, got %v", err)
	}
}

func TestOpenChallengeRefusedWhenClean(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Cleanliness = 85 })
	h.start(t)
	before := h.game.Snapshot()

	v, err := h.game.OpenChallenge(context.Background())
	if !errors.Is(err, common.ErrAlreadyClean) {
		t.Fatalf("Expected ErrAlreadyClean, got %v", err)
	}
	if v.Quiz != nil {
		t.Error("Quiz must stay closed")
	}

	after := h.game.Snapshot()
	if after.Cleanliness != 85 {
		t.Errorf("Cleanliness changed: %d", after.Cleanliness)
	}
	if len(after.Events) != len(before.Events)+1 || after.Events[0].Message != quiz.AlreadyCleanMessage {
		t.Errorf("Expected one informational event, got %+v", after.Events)
	}
}

func TestQuizCorrectAnswerRestoresAndAutoCloses(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Cleanliness = 50 })
	h.start(t)
	ctx := context.Background()
	h.clock.Advance(30 * time.Minute)

	v, err := h.game.OpenChallenge(ctx)
	if err != nil || v.Quiz == nil {
		t.Fatalf("Expected open quiz, got %v", err)
	}
	if v.Quiz.Question.Text != quiz.DefaultBank[2].Text {
		t.Errorf("Unexpected question %q", v.Quiz.Question.Text)
	}

	v, err = h.game.Answer(ctx, 0)
	if err != nil {
		t.Fatalf("Wrong answer returned error: %v", err)
	}
	if v.Quiz == nil || v.Quiz.Feedback != "enqueue? Подумай ещё раз." || v.State.Cleanliness != 50 {
		t.Errorf("Wrong answer must only set feedback, got %+v", v.Quiz)
	}

	before := len(h.game.Snapshot().Events)
	v, err = h.game.Answer(ctx, 1)
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	s := h.game.Snapshot()
	if s.Cleanliness != 80 {
		t.Errorf("Expected cleanliness 80, got %d", s.Cleanliness)
	}
	if !s.LastCleanlinessCheckAt.Equal(h.clock.Now()) {
		t.Error("Expected cleanliness checkpoint reset to now")
	}
	if len(s.Events) != before+1 || s.Events[0].Message != quiz.QuizCleanedMessage {
		t.Errorf("Expected exactly one success event, got %+v", s.Events[:2])
	}
	if v.Quiz == nil || !v.Quiz.Solved {
		t.Error("Expected solved session until auto-close")
	}

	h.clock.Advance(1200 * time.Millisecond)
	if h.game.View().Quiz != nil {
		t.Error("Quiz should auto-close after the delay")
	}
	if last := h.presenter.quiz[len(h.presenter.quiz)-1]; last != nil {
		t.Error("Presenter should be told the quiz closed")
	}
}

func TestCloseChallengeCancelsAutoClose(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Cleanliness = 40 })
	h.start(t)
	ctx := context.Background()

	h.game.OpenChallenge(ctx)
	h.game.Answer(ctx, 1)
	h.game.CloseChallenge(ctx)

	if h.clock.Pending() != 0 {
		t.Errorf("Expected auto-close timer cancelled, %d pending", h.clock.Pending())
	}
	notified := len(h.presenter.quiz)
	h.clock.Advance(time.Minute)
	if len(h.presenter.quiz) != notified {
		t.Error("Cancelled timer must not notify")
	}
}

func TestAnswerErrors(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Cleanliness = 40 })
	h.start(t)
	ctx := context.Background()

	if _, err := h.game.Answer(ctx, 0); !errors.Is(err, common.ErrNoActiveQuiz) {
		t.Errorf("Expected ErrNoActiveQuiz, got %v", err)
	}
	h.game.OpenChallenge(ctx)
	if _, err := h.game.Answer(ctx, 7); !errors.Is(err, common.ErrInvalidChoice) {
		t.Errorf("Expected ErrInvalidChoice, got %v", err)
	}
}

func TestCleanInstantly(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) { s.Cleanliness = 50 })
	h.start(t)
	h.clock.Advance(10 * time.Minute)

	h.game.CleanInstantly(context.Background())

	s := h.game.Snapshot()
	if s.Cleanliness != 65 {
		t.Errorf("Expected 65, got %d", s.Cleanliness)
	}
	if !s.LastCleanlinessCheckAt.Equal(h.clock.Now()) || s.Events[0].Message != quiz.InstantCleanMessage {
		t.Error("Expected checkpoint reset and clean event")
	}
}

func TestReset(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()
	h.game.Feed(ctx, 5)
	h.clock.Advance(2 * time.Hour)

	v := h.game.Reset(ctx)

	s := v.State
	if s.Level != 1 || s.Coins != 0 || s.FoodStock != pet.DefaultFoodStock || s.Cleanliness != pet.DefaultCleanliness {
		t.Errorf("Expected defaults after reset, got %+v", s)
	}
	if len(s.Events) != 1 || s.Events[0].Message != ResetMessage {
		t.Errorf("Expected single reset event, got %+v", s.Events)
	}
	now := h.clock.Now()
	if !s.LastFedAt.Equal(now) || !s.LastCleanlinessCheckAt.Equal(now) {
		t.Error("Reset must restart timers from now")
	}
}

func TestStartAndTickApplyCleanlinessDecay(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) {
		s.Cleanliness = 50
		s.LastCleanlinessCheckAt = t0.Add(-4 * time.Hour)
	})
	h.start(t)
	ctx := context.Background()

	s := h.game.Snapshot()
	if s.Cleanliness != 38 || !s.LastCleanlinessCheckAt.Equal(t0) {
		t.Fatalf("Expected 38 with checkpoint at now, got %d at %v", s.Cleanliness, s.LastCleanlinessCheckAt)
	}

	h.clock.Advance(30 * time.Minute)
	h.game.Tick(ctx)
	if got := h.game.Snapshot().Cleanliness; got != 38 {
		t.Errorf("Tick within an hour must not decay, got %d", got)
	}

	h.clock.Advance(40 * time.Minute)
	h.game.Tick(ctx)
	if got := h.game.Snapshot().Cleanliness; got != 35 {
		t.Errorf("Expected 35 after 70 minutes, got %d", got)
	}
}

func TestLoadFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		blob  string
		check func(t *testing.T, s pet.PetState)
	}{
		{"corrupt", "не json", func(t *testing.T, s pet.PetState) {
			if s.Level != 1 || s.Name != pet.DefaultName {
				t.Errorf("Expected defaults, got %+v", s)
			}
		}},
		{"partial", `{"level":4,"coins":"много","cleanliness":250}`, func(t *testing.T, s pet.PetState) {
			if s.Level != 4 || s.Coins != 0 || s.Cleanliness != 100 {
				t.Errorf("Expected level 4, coins 0, cleanliness 100, got %d %d %d", s.Level, s.Coins, s.Cleanliness)
			}
		}},
		{"legacy", `{"name":"Мурка","exp":50,"expToNext":120,"food":2,"streak":3,"bestStreak":5}`, func(t *testing.T, s pet.PetState) {
			if s.Name != "Мурка" || s.Experience != 50 || s.FoodStock != 2 || s.FeedStreak != 3 || s.BestFeedStreak != 5 {
				t.Errorf("Legacy fields not mapped: %+v", s)
			}
		}},
		{"experience over threshold", `{"level":1,"experience":250,"experienceToNext":120,"coins":0}`, func(t *testing.T, s pet.PetState) {
			if s.Level != 2 || s.Experience != 130 || s.ExperienceToNext != 141 || s.Coins != 50 {
				t.Errorf("Expected level-up on load to ур. 2 / 130 / 141 / 50, got %d / %d / %d / %d",
					s.Level, s.Experience, s.ExperienceToNext, s.Coins)
			}
		}},
		{"out of range numbers", `{"cleanliness":1e20,"coins":1e20,"level":1e20,"foodStock":1e20}`, func(t *testing.T, s pet.PetState) {
			if s.Cleanliness != pet.DefaultCleanliness || s.Coins != 0 || s.Level != 1 || s.FoodStock != pet.DefaultFoodStock {
				t.Errorf("Expected defaults for out-of-range fields, got %d %d %d %d", s.Cleanliness, s.Coins, s.Level, s.FoodStock)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewSaveRepository()
			repo.Put([]byte(tt.blob))
			g := New(context.Background(), Deps{Clock: clock.NewFake(t0), Persistence: repo, Presenter: &fakePresenter{}}, Options{Location: time.UTC})
			tt.check(t, g.Snapshot())
		})
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, nil)
	h.repo.FailWith(errors.New("хранилище недоступно"))
	h.start(t)

	if _, err := h.game.Feed(context.Background(), 1); err != nil {
		t.Fatalf("Save failure must not surface, got %v", err)
	}
	if h.game.Snapshot().FoodStock != pet.DefaultFoodStock-1 {
		t.Error("Feed must still apply in memory")
	}
}

func TestHungerThoughtOnStageChange(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()

	h.clock.Advance(7 * time.Hour)
	h.game.Tick(ctx)
	h.game.Tick(ctx)

	want := []string{"Счастье! Наелся от души~", "Может, пора перекусить?"}
	if !reflect.DeepEqual(h.presenter.thoughts, want) {
		t.Errorf("Expected thoughts %v, got %v", want, h.presenter.thoughts)
	}
}

func TestRemindStreak(t *testing.T) {
	h := newHarness(t, func(s *pet.PetState) {
		s.LastFedDate = "2025-02-28"
		s.FeedStreak = 4
		s.BestFeedStreak = 4
	})
	h.start(t)
	ctx := context.Background()
	saves := h.repo.Saves()

	if !h.game.RemindStreak(ctx) {
		t.Fatal("Expected reminder")
	}
	if h.game.RemindStreak(ctx) {
		t.Error("Expected at most one reminder per day")
	}
	if len(h.presenter.reminders) != 1 {
		t.Errorf("Expected 1 reminder, got %d", len(h.presenter.reminders))
	}
	if h.repo.Saves() != saves {
		t.Error("Reminder must not mutate or save state")
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	sched := &fakeScheduler{}
	h.game.AttachScheduler(sched)

	h.start(t)
	h.start(t)
	h.game.Stop(context.Background())

	if sched.starts != 2 || sched.stops != 1 {
		t.Errorf("Expected 2 starts and 1 stop, got %d and %d", sched.starts, sched.stops)
	}
}

func TestInvariantsUnderRandomOperations(t *testing.T) {
	h := newHarness(t, nil)
	h.start(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(2025))

	for i := 0; i < 400; i++ {
		switch rng.Intn(9) {
		case 0:
			h.game.Feed(ctx, 1+rng.Intn(3))
		case 1:
			h.game.BuyFood(ctx, 1+rng.Intn(2))
		case 2:
			h.game.OpenChallenge(ctx)
		case 3:
			h.game.Answer(ctx, rng.Intn(4))
		case 4:
			h.game.CleanInstantly(ctx)
		case 5:
			h.game.Tick(ctx)
		case 6:
			h.clock.Advance(time.Duration(rng.Intn(30)) * time.Hour)
		case 7:
			h.game.CloseChallenge(ctx)
		case 8:
			if rng.Intn(20) == 0 {
				h.game.Reset(ctx)
			}
		}

		s := h.game.Snapshot()
		if s.Cleanliness < 0 || s.Cleanliness > 100 {
			t.Fatalf("Step %d: cleanliness out of range: %d", i, s.Cleanliness)
		}
		if s.Experience < 0 || s.Experience >= s.ExperienceToNext {
			t.Fatalf("Step %d: experience %d / %d", i, s.Experience, s.ExperienceToNext)
		}
		if s.FoodStock < 0 || s.Coins < 0 {
			t.Fatalf("Step %d: negative food or coins", i)
		}
		if len(s.Events) > eventlog.MaxEntries {
			t.Fatalf("Step %d: %d events", i, len(s.Events))
		}
		if s.BestFeedStreak < s.FeedStreak {
			t.Fatalf("Step %d: best %d below streak %d", i, s.BestFeedStreak, s.FeedStreak)
		}
		if v := h.game.View(); len(v.Events) > RecentEvents {
			t.Fatalf("Step %d: view has %d events", i, len(v.Events))
		}
	}
}

// blockingPresenter висит в Thought, пока тест не отпустит release.
type blockingPresenter struct {
	LogPresenter
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPresenter) Thought(context.Context, string) {
	select {
	case p.entered <- struct{}{}:
	default:
	}
	<-p.release
}

func TestSlowPresenterDoesNotBlockGame(t *testing.T) {
	ctx := context.Background()
	p := &blockingPresenter{entered: make(chan struct{}, 1), release: make(chan struct{})}
	g := New(ctx, Deps{Clock: clock.NewFake(t0), Persistence: memory.NewSaveRepository(), Presenter: p}, Options{
		Location: time.UTC,
		Picker:   fixedPicker(2),
	})

	fed := make(chan struct{})
	go func() {
		defer close(fed)
		if _, err := g.Feed(ctx, 1); err != nil {
			t.Errorf("Feed failed: %v", err)
		}
	}()

	select {
	case <-p.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected presenter to receive a thought")
	}

	viewed := make(chan View, 1)
	go func() { viewed <- g.View() }()

	select {
	case v := <-viewed:
		if v.State.FoodStock != pet.DefaultFoodStock-1 {
			t.Errorf("Expected food stock %d, got %d", pet.DefaultFoodStock-1, v.State.FoodStock)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("View blocked while the presenter was busy")
	}

	close(p.release)
	<-fed
}
