// Package pet управляет состоянием питомца.
// models.go описывает запись PetState и её значения по умолчанию.
package pet

import (
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/eventlog"
)

// Значения новой записи питомца.
const (
	DefaultName          = "Алгокот"
	DefaultLevel         = 1
	BaseExperienceToNext = 120
	DefaultFoodStock     = 5
	DefaultCleanliness   = 90
	DefaultFeedStreak    = 1
	MinCleanliness       = 0
	MaxCleanliness       = 100
)

// PetState — единственная запись питомца пользователя.
// Меняется только через операции движка, хранится целиком одним блобом.
type PetState struct {
	Name             string
	Level            int
	Experience       int
	ExperienceToNext int
	Coins            int
	FoodStock        int

	LastFedAt   time.Time
	LastFedDate string // YYYY-MM-DD в локальном поясе, "" — ещё ни разу не кормили

	FeedStreak     int // Текущая серия (дней подряд)
	BestFeedStreak int // Личный рекорд

	// DebuffActive кэширует дебафф текущей стадии голода.
	// Сохраняется, чтобы переход логировался один раз, а не каждый тик.
	DebuffActive bool

	Cleanliness            int // 0..100
	LastCleanlinessCheckAt time.Time

	Events eventlog.Log
}

// Defaults возвращает новую запись питомца на момент now.
func Defaults(name string, now time.Time, loc *time.Location) PetState {
	if name == "" {
		name = DefaultName
	}
	return PetState{
		Name:                   name,
		Level:                  DefaultLevel,
		Experience:             0,
		ExperienceToNext:       BaseExperienceToNext,
		Coins:                  0,
		FoodStock:              DefaultFoodStock,
		LastFedAt:              now,
		LastFedDate:            common.DateString(now, loc),
		FeedStreak:             DefaultFeedStreak,
		BestFeedStreak:         DefaultFeedStreak,
		DebuffActive:           false,
		Cleanliness:            DefaultCleanliness,
		LastCleanlinessCheckAt: now,
		Events:                 eventlog.Log{},
	}
}

// Clone возвращает независимую копию (журнал копируется).
func (s PetState) Clone() PetState {
	s.Events = s.Events.Clone()
	return s
}

// AddEvent добавляет запись в журнал питомца.
func (s *PetState) AddEvent(message string, at time.Time) {
	s.Events = eventlog.Push(s.Events, message, at)
}

// Normalize приводит все ограниченные поля к допустимым диапазонам.
// Вызывается на каждой записи в хранилище, поэтому инварианты
// не могут нарушиться даже при ошибке в операции.
func (s *PetState) Normalize() {
	s.normalizeBounds()
	s.Experience = common.Clamp(s.Experience, 0, s.ExperienceToNext-1)
}

// normalizeBounds — то же, что Normalize, но опыт ограничивается только снизу.
func (s *PetState) normalizeBounds() {
	s.Cleanliness = common.Clamp(s.Cleanliness, MinCleanliness, MaxCleanliness)
	if s.FoodStock < 0 {
		s.FoodStock = 0
	}
	if s.Coins < 0 {
		s.Coins = 0
	}
	if s.Level < DefaultLevel {
		s.Level = DefaultLevel
	}
	if s.ExperienceToNext <= 0 {
		s.ExperienceToNext = BaseExperienceToNext
	}
	if s.Experience < 0 {
		s.Experience = 0
	}
	if s.FeedStreak < DefaultFeedStreak {
		s.FeedStreak = DefaultFeedStreak
	}
	if s.BestFeedStreak < s.FeedStreak {
		s.BestFeedStreak = s.FeedStreak
	}
	if s.Events == nil {
		s.Events = eventlog.Log{}
	}
	s.Events = s.Events.Truncate()
}
