// Package clock абстрагирует текущее время и отложенные вызовы.
// Вся логика распада и стриков получает время только через Clock,
// поэтому её можно тестировать без реального ожидания.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock выдаёт текущее время и умеет планировать отложенный вызов.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer — отменяемая отложенная задача.
// Stop возвращает false, если задача уже сработала или была отменена.
type Timer interface {
	Stop() bool
}

// Real — настоящие часы на основе пакета time.
type Real struct{}

// Now возвращает текущее системное время.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc вызывает f в отдельной горутине через d.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Fake — управляемые вручную часы для тестов.
// Отложенные вызовы срабатывают синхронно внутри Advance.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	owner    *Fake
	deadline time.Time
	fn       func()
	done     bool
}

// NewFake создаёт часы, остановленные на моменте start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now возвращает текущее «замороженное» время.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы на t без запуска таймеров.
// Нужен для сценариев со сдвигом часов назад.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// AfterFunc регистрирует вызов f после d «фейкового» времени.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{owner: f, deadline: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance сдвигает часы на d и выполняет все созревшие таймеры
// в порядке их дедлайнов.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now

	var due []*fakeTimer
	pending := f.timers[:0]
	for _, t := range f.timers {
		if t.done {
			continue
		}
		if !t.deadline.After(now) {
			t.done = true
			due = append(due, t)
			continue
		}
		pending = append(pending, t)
	}
	f.timers = pending
	f.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	// Вызываем вне блокировки: колбэк может снова обратиться к часам.
	for _, t := range due {
		t.fn()
	}
}

// Pending возвращает число ещё не сработавших таймеров.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
