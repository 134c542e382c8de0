// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: периодический тик распада
// и ежечасное напоминание о серии.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// jobTimeout — сколько может длиться одна фоновая задача.
const jobTimeout = 30 * time.Second

// Target — то, что планировщик дёргает по расписанию.
type Target interface {
	Tick(ctx context.Context)
	RemindStreak(ctx context.Context) bool
}

// Options — расписание задач.
type Options struct {
	TickInterval     time.Duration  // Период тика распада
	ReminderSchedule string         // Cron-выражение напоминаний, пусто — выключены
	Location         *time.Location // Пояс для cron-выражений
}

// Scheduler управляет фоновыми задачами.
// Start можно вызывать повторно: старый набор задач останавливается,
// поэтому тики никогда не накладываются.
type Scheduler struct {
	mu     sync.Mutex
	ctx    context.Context
	target Target
	opts   Options
	cron   *cron.Cron
}

// NewScheduler создаёт планировщик. Задачи получают контекст, производный от ctx.
func NewScheduler(ctx context.Context, target Target, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Scheduler{ctx: ctx, target: target, opts: opts}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start() error {
	if s.opts.TickInterval <= 0 {
		return fmt.Errorf("период тика должен быть > 0")
	}

	c := cron.New(cron.WithLocation(s.opts.Location))

	c.Schedule(cron.Every(s.opts.TickInterval), cron.FuncJob(func() {
		log.Debug("[CRON] Тик питомца")
		ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
		defer cancel()
		s.target.Tick(ctx)
	}))

	if s.opts.ReminderSchedule != "" {
		_, err := c.AddFunc(s.opts.ReminderSchedule, func() {
			log.Debug("[CRON] Проверка напоминания о серии")
			ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
			defer cancel()
			s.target.RemindStreak(ctx)
		})
		if err != nil {
			return fmt.Errorf("некорректное расписание напоминаний %q: %w", s.opts.ReminderSchedule, err)
		}
	}

	s.mu.Lock()
	prev := s.cron
	s.cron = c
	s.mu.Unlock()

	if prev != nil {
		<-prev.Stop().Done()
	}
	c.Start()

	log.WithFields(log.Fields{
		"tick":     s.opts.TickInterval.String(),
		"reminder": s.opts.ReminderSchedule,
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт завершения выполняющихся задач.
// Безопасно вызывать повторно и до Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	log.Info("Планировщик задач остановлен")
}

// Entries возвращает число зарегистрированных задач (0, если остановлен).
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}
