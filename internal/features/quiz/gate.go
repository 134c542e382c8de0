package quiz

import (
	"fmt"
	"time"

	"serotonyl.ru/algopet/internal/clock"
	"serotonyl.ru/algopet/internal/common"
)

// Параметры уборки.
const (
	// CleanThreshold — при такой чистоте и выше викторина не открывается.
	CleanThreshold = 80
	// DefaultAutoClose — через сколько закрыть решённую викторину.
	DefaultAutoClose = 1200 * time.Millisecond
)

// Picker выбирает случайный индекс в [0, n). Подходит *rand.Rand.
type Picker interface {
	Intn(n int) int
}

// Session — живая викторина. Одновременно существует не больше одной.
type Session struct {
	ID       uint64   `json:"id"`
	Question Question `json:"question"`
	Selected *int     `json:"selectedIndex,omitempty"`
	Feedback string   `json:"feedback"`
	Solved   bool     `json:"solved"`
}

func (s Session) clone() Session {
	if s.Selected != nil {
		v := *s.Selected
		s.Selected = &v
	}
	s.Question.Choices = append([]string(nil), s.Question.Choices...)
	return s
}

// AutoCloseFunc вызывается таймером автозакрытия с ID сессии,
// для которой он был заведён.
type AutoCloseFunc func(sessionID uint64)

// Gate — конечный автомат викторины: Idle → Open → Idle.
// Не потокобезопасен: все вызовы идут под блокировкой владельца.
type Gate struct {
	bank      []Question
	picker    Picker
	clock     clock.Clock
	autoClose time.Duration
	onExpire  AutoCloseFunc

	session *Session
	timer   clock.Timer
	nextID  uint64
}

// NewGate создаёт викторину.
//
// Параметры:
//   - bank: вопросы; некорректные отбрасываются
//   - picker: источник случайности
//   - clk: часы для таймера автозакрытия
//   - autoClose: задержка автозакрытия после верного ответа
func NewGate(bank []Question, picker Picker, clk clock.Clock, autoClose time.Duration) *Gate {
	valid := make([]Question, 0, len(bank))
	for _, q := range bank {
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	if autoClose <= 0 {
		autoClose = DefaultAutoClose
	}
	return &Gate{bank: valid, picker: picker, clock: clk, autoClose: autoClose}
}

// OnExpire задаёт обработчик автозакрытия. Владелец обязан сам взять
// блокировку и вызвать Expire с полученным ID.
func (g *Gate) OnExpire(fn AutoCloseFunc) {
	g.onExpire = fn
}

// Open открывает викторину со случайным вопросом.
// При cleanliness ≥ CleanThreshold возвращает ErrAlreadyClean и остаётся в Idle.
// Если викторина уже открыта — она заменяется новой.
func (g *Gate) Open(cleanliness int) (Session, error) {
	if cleanliness >= CleanThreshold {
		return Session{}, common.ErrAlreadyClean
	}
	if len(g.bank) == 0 {
		return Session{}, common.ErrEmptyQuestionBank
	}

	g.Close()
	g.nextID++
	q := g.bank[g.picker.Intn(len(g.bank))]
	g.session = &Session{ID: g.nextID, Question: q}
	return g.session.clone(), nil
}

// AnswerResult — итог ответа.
type AnswerResult struct {
	Correct bool
	Session Session
}

// Answer принимает вариант index (с нуля).
//
// Ошибки (состояние не меняется):
//   - ErrNoActiveQuiz — викторина не открыта или уже решена
//   - ErrInvalidChoice — index вне диапазона вариантов
//
// Неверный ответ оставляет викторину открытой с подсказкой.
// Верный — заводит таймер автозакрытия.
func (g *Gate) Answer(index int) (AnswerResult, error) {
	if g.session == nil || g.session.Solved {
		return AnswerResult{}, common.ErrNoActiveQuiz
	}
	q := g.session.Question
	if index < 0 || index >= len(q.Choices) {
		return AnswerResult{}, common.ErrInvalidChoice
	}

	selected := index
	g.session.Selected = &selected

	if index != q.Correct {
		g.session.Feedback = fmt.Sprintf("%s? Подумай ещё раз.", q.Choices[index])
		return AnswerResult{Session: g.session.clone()}, nil
	}

	g.session.Feedback = "Верно! " + q.Explanation
	g.session.Solved = true
	g.armAutoClose(g.session.ID)
	return AnswerResult{Correct: true, Session: g.session.clone()}, nil
}

func (g *Gate) armAutoClose(id uint64) {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = g.clock.AfterFunc(g.autoClose, func() {
		if g.onExpire != nil {
			g.onExpire(id)
		}
	})
}

// Expire закрывает сессию id, если она всё ещё текущая.
// Устаревший таймер (сессию уже закрыли или заменили) ничего не делает.
func (g *Gate) Expire(id uint64) bool {
	if g.session == nil || g.session.ID != id {
		return false
	}
	g.timer = nil
	g.session = nil
	return true
}

// Close закрывает текущую викторину и отменяет таймер.
// Возвращает false, если закрывать было нечего.
func (g *Gate) Close() bool {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.session == nil {
		return false
	}
	g.session = nil
	return true
}

// Current возвращает копию открытой викторины.
func (g *Gate) Current() (Session, bool) {
	if g.session == nil {
		return Session{}, false
	}
	return g.session.clone(), true
}
