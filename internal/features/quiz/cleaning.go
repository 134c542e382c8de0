package quiz

import (
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// Сколько чистоты восстанавливает каждый способ уборки.
const (
	QuizReward   = 30
	InstantClean = 15
)

// Тексты событий уборки.
const (
	QuizCleanedMessage  = "Решили задачку по информатике и прибрались!"
	InstantCleanMessage = "Быстрая уборка: стало немного чище."
	AlreadyCleanMessage = "Сейчас и так достаточно чисто!"
)

// Restore поднимает чистоту на amount (не выше 100)
// и сбрасывает точку отсчёта загрязнения на at.
// Возвращает фактический прирост.
func Restore(s *pet.PetState, amount int, at time.Time) int {
	before := s.Cleanliness
	s.Cleanliness = common.Clamp(s.Cleanliness+amount, pet.MinCleanliness, pet.MaxCleanliness)
	s.LastCleanlinessCheckAt = at
	return s.Cleanliness - before
}
