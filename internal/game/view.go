package game

import (
	"time"

	"serotonyl.ru/algopet/internal/features/decay"
	"serotonyl.ru/algopet/internal/features/eventlog"
	"serotonyl.ru/algopet/internal/features/pet"
	"serotonyl.ru/algopet/internal/features/progression"
	"serotonyl.ru/algopet/internal/features/quiz"
)

// RecentEvents — сколько последних событий попадает в снимок.
const RecentEvents = 8

// View — снимок для отображения: запись, стадии и викторина.
type View struct {
	At                time.Time              `json:"at"`
	State             pet.PetState           `json:"state"`
	Hunger            decay.HungerStage      `json:"hunger"`
	Cleanliness       decay.CleanlinessStage `json:"cleanliness"`
	ExperiencePercent float64                `json:"experiencePercent"`
	Debuffed          bool                   `json:"debuffed"`
	Events            eventlog.Log           `json:"events"`
	Quiz              *quiz.Session          `json:"quiz,omitempty"`
}

func buildView(s pet.PetState, now time.Time, gate *quiz.Gate) View {
	hunger := decay.Hunger(now, s.LastFedAt)
	v := View{
		At:                now,
		State:             s,
		Hunger:            hunger,
		Cleanliness:       decay.Cleanliness(s.Cleanliness),
		ExperiencePercent: progression.Percent(s),
		Debuffed:          progression.IsDebuffed(s, hunger),
		Events:            s.Events.Latest(RecentEvents),
	}
	if cur, ok := gate.Current(); ok {
		v.Quiz = &cur
	}
	return v
}
