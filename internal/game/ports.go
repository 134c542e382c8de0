package game

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/features/quiz"
)

// Persistence — порт хранения сериализованной записи питомца.
// Load возвращает common.ErrNoSave, если сохранения ещё нет.
type Persistence interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
}

// Presenter — порт отображения. Получает снимок после каждого изменения,
// мысли питомца, напоминания и изменения викторины.
// Игра вызывает его уже после отпускания своей блокировки, поэтому
// методы могут делать медленные сетевые вызовы.
type Presenter interface {
	Render(ctx context.Context, v View)
	Thought(ctx context.Context, text string)
	Reminder(ctx context.Context, text string)
	// QuizChanged получает nil, когда викторина закрыта.
	QuizChanged(ctx context.Context, s *quiz.Session)
}

// Scheduler — периодический тик, которым владеет игра.
type Scheduler interface {
	Start() error
	Stop()
}

// LogPresenter выводит всё в лог. Используется, когда бот выключен.
type LogPresenter struct{}

func (LogPresenter) Render(_ context.Context, v View) {
	log.WithFields(log.Fields{
		"level":       v.State.Level,
		"experience":  v.State.Experience,
		"food":        v.State.FoodStock,
		"cleanliness": v.State.Cleanliness,
		"hunger":      v.Hunger.Label,
		"debuff":      v.Debuffed,
	}).Debug("Питомец обновлён")
}

func (LogPresenter) Thought(_ context.Context, text string) {
	log.WithField("thought", text).Info("Мысль питомца")
}

func (LogPresenter) Reminder(_ context.Context, text string) {
	log.WithField("reminder", text).Info("Напоминание о серии")
}

func (LogPresenter) QuizChanged(_ context.Context, s *quiz.Session) {
	if s == nil {
		log.Debug("Викторина закрыта")
		return
	}
	log.WithFields(log.Fields{
		"session":  s.ID,
		"question": s.Question.Text,
		"solved":   s.Solved,
	}).Debug("Викторина обновлена")
}
