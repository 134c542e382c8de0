package bot

import (
	"context"

	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/features/quiz"
	"serotonyl.ru/algopet/internal/game"
)

// Presenter отправляет мысли питомца и напоминания в чат хозяина.
// Снимки и изменения викторины не шлёт: на команды бот отвечает сам.
type Presenter struct {
	sender Sender
	chatID int64
}

// NewPresenter создаёт презентер для чата chatID.
func NewPresenter(sender Sender, chatID int64) *Presenter {
	return &Presenter{sender: sender, chatID: chatID}
}

func (p *Presenter) Render(_ context.Context, v game.View) {
	log.WithFields(log.Fields{
		"level":       v.State.Level,
		"cleanliness": v.State.Cleanliness,
		"hunger":      v.Hunger.Label,
	}).Debug("Снимок питомца")
}

func (p *Presenter) Thought(ctx context.Context, text string) {
	p.send(ctx, "💭 "+text)
}

func (p *Presenter) Reminder(ctx context.Context, text string) {
	p.send(ctx, text)
}

func (p *Presenter) QuizChanged(_ context.Context, s *quiz.Session) {
	if s == nil {
		log.Debug("Викторина закрыта")
	}
}

func (p *Presenter) send(ctx context.Context, text string) {
	if _, err := p.sender.SendMessage(ctx, tu.Message(tu.ID(p.chatID), text)); err != nil {
		log.WithError(err).WithField("chat_id", p.chatID).Warn("Не удалось отправить сообщение")
	}
}
