package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/game"
)

// Game — операции питомца, доступные из чата.
type Game interface {
	View() game.View
	Feed(ctx context.Context, amount int) (game.View, error)
	BuyFood(ctx context.Context, units int) (game.View, error)
	OpenChallenge(ctx context.Context) (game.View, error)
	Answer(ctx context.Context, index int) (game.View, error)
	CloseChallenge(ctx context.Context) game.View
	CleanInstantly(ctx context.Context) game.View
	Reset(ctx context.Context) game.View
}

// routeCommand выполняет команду и возвращает текст ответа.
// Пустая строка — команда не распознана, отвечать не нужно.
func (b *Bot) routeCommand(ctx context.Context, cmd string, args []string) string {
	switch cmd {
	case "start", "help", "помощь":
		return helpText

	case "pet", "питомец":
		return FormatStatus(b.game.View())

	case "feed", "покормить":
		amount, ok := parseAmount(args, 1)
		if !ok {
			return errorText(common.ErrInvalidAmount, game.View{})
		}
		v, err := b.game.Feed(ctx, amount)
		if err != nil {
			return errorText(err, v)
		}
		return latestEvent(v) + "\n\n" + FormatStatus(v)

	case "shop", "купить":
		units, ok := parseAmount(args, 1)
		if !ok {
			return errorText(common.ErrInvalidAmount, game.View{})
		}
		v, err := b.game.BuyFood(ctx, units)
		if err != nil {
			return errorText(err, v)
		}
		return "🛒 " + latestEvent(v)

	case "clean", "убрать":
		v := b.game.CleanInstantly(ctx)
		return fmt.Sprintf("🧽 %s Чистота: %d%%", latestEvent(v), v.State.Cleanliness)

	case "quiz", "викторина":
		v, err := b.game.OpenChallenge(ctx)
		if err != nil {
			return errorText(err, v)
		}
		return FormatQuiz(v.Quiz)

	case "answer", "ответ":
		if len(args) == 0 {
			return errorText(common.ErrInvalidChoice, game.View{})
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return errorText(common.ErrInvalidChoice, game.View{})
		}
		v, err := b.game.Answer(ctx, n-1)
		if err != nil {
			return errorText(err, v)
		}
		if v.Quiz != nil && v.Quiz.Solved {
			return fmt.Sprintf("✅ %s\nЧистота: %d%%", v.Quiz.Feedback, v.State.Cleanliness)
		}
		return FormatQuiz(v.Quiz)

	case "close", "закрыть":
		if b.game.View().Quiz == nil {
			return "Викторина и так не открыта."
		}
		b.game.CloseChallenge(ctx)
		return "Викторина закрыта."

	case "log", "журнал":
		return FormatEvents(b.game.View(), b.clock.Now())

	case "reset", "сброс":
		// Подтверждение — забота интерфейса, игра сбрасывает без вопросов
		if len(args) == 0 || !isConfirmation(args[0]) {
			return "⚠️ Питомец начнёт всё заново. Для подтверждения: !reset да"
		}
		v := b.game.Reset(ctx)
		return "🔄 " + latestEvent(v) + "\n\n" + FormatStatus(v)
	}
	return ""
}

func isConfirmation(s string) bool {
	switch strings.ToLower(s) {
	case "да", "yes", "y":
		return true
	}
	return false
}

func latestEvent(v game.View) string {
	if len(v.Events) == 0 {
		return ""
	}
	return v.Events[0].Message
}

// errorText переводит ошибку игры в понятное сообщение.
func errorText(err error, v game.View) string {
	switch {
	case errors.Is(err, common.ErrNotEnoughFood):
		return "❌ " + latestEvent(v) + "\nКупить ещё: !shop N"
	case errors.Is(err, common.ErrNotEnoughCoins):
		return "❌ " + latestEvent(v)
	case errors.Is(err, common.ErrInvalidAmount):
		return "❌ Количество должно быть числом от 1 до 9999"
	case errors.Is(err, common.ErrAlreadyClean):
		return "✨ Сейчас и так достаточно чисто!"
	case errors.Is(err, common.ErrNoActiveQuiz):
		return "❓ Викторина не открыта. Начать: !quiz"
	case errors.Is(err, common.ErrInvalidChoice):
		return "❓ Такого варианта нет. Ответ: !answer N"
	case errors.Is(err, common.ErrEmptyQuestionBank):
		return "😿 Вопросы для уборки закончились"
	default:
		return "❌ Что-то пошло не так, попробуй ещё раз"
	}
}
