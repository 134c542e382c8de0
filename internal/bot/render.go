package bot

import (
	"fmt"
	"strings"
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/decay"
	"serotonyl.ru/algopet/internal/features/quiz"
	"serotonyl.ru/algopet/internal/game"
)

const helpText = `🐱 Алгокот ждёт заботы!

!pet — состояние питомца
!feed N — скормить N порций (по умолчанию 1)
!shop N — купить N порций корма
!clean — быстрая уборка (+15 чистоты)
!quiz — викторина для генеральной уборки (+30)
!answer N — ответить на викторину
!close — закрыть викторину
!log — журнал событий
!reset да — начать заново`

// severityIcon — значок тона стадии.
func severityIcon(s decay.Severity) string {
	switch s {
	case decay.SeverityGood:
		return "🟢"
	case decay.SeverityWarn:
		return "🟡"
	default:
		return "🔴"
	}
}

// progressBar рисует полосу из 10 делений для процента 0..100.
func progressBar(percent float64) string {
	filled := int(percent / 10)
	filled = common.Clamp(filled, 0, 10)
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 10-filled)
}

// FormatStatus форматирует карточку питомца.
func FormatStatus(v game.View) string {
	s := v.State
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🐱 %s · ур. %d\n", s.Name, s.Level))
	sb.WriteString(fmt.Sprintf("✨ Опыт: %d/%d %s %.0f%%\n",
		s.Experience, s.ExperienceToNext, progressBar(v.ExperiencePercent), v.ExperiencePercent))
	sb.WriteString(fmt.Sprintf("💰 %s · 🍖 %s\n", common.FormatCoins(s.Coins), common.FormatPortions(s.FoodStock)))
	sb.WriteString(fmt.Sprintf("%s Сытость: %s %s\n   %s\n",
		severityIcon(v.Hunger.Severity), v.Hunger.Label, progressBar(v.Hunger.Percent), v.Hunger.Detail))
	sb.WriteString(fmt.Sprintf("%s Чистота: %s %s\n   %s\n",
		severityIcon(v.Cleanliness.Severity), v.Cleanliness.Label, progressBar(float64(v.Cleanliness.Percent)), v.Cleanliness.Detail))
	sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s (рекорд %d)",
		s.FeedStreak, common.PluralizeDays(s.FeedStreak), s.BestFeedStreak))

	if v.Debuffed {
		sb.WriteString("\n⚠️ Из-за голода опыт начисляется вдвое меньше")
	}
	return sb.String()
}

// FormatQuiz форматирует вопрос викторины с вариантами (нумерация с 1).
func FormatQuiz(s *quiz.Session) string {
	if s == nil {
		return "Викторина не открыта."
	}
	var sb strings.Builder
	sb.WriteString("🧹 " + s.Question.Text + "\n\n")
	for i, choice := range s.Question.Choices {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, choice))
	}
	if s.Feedback != "" {
		sb.WriteString("\n" + s.Feedback)
	} else {
		sb.WriteString("\nОтвет: !answer N")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatEvents форматирует журнал событий от новых к старым.
func FormatEvents(v game.View, now time.Time) string {
	if len(v.Events) == 0 {
		return "📋 Журнал пуст"
	}
	var sb strings.Builder
	sb.WriteString("📋 Последние события:\n")
	for _, e := range v.Events {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", e.Message, common.FormatRelative(now, e.At)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
