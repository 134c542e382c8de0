package game

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/decay"
	"serotonyl.ru/algopet/internal/features/pet"
	"serotonyl.ru/algopet/internal/features/progression"
	"serotonyl.ru/algopet/internal/features/quiz"
	"serotonyl.ru/algopet/internal/features/streak"
)

// ExperiencePerFood — опыт за одну порцию корма.
const ExperiencePerFood = 24

// Тексты событий и мыслей.
const (
	ResetMessage  = "Начинаем новое приключение!"
	fedThought    = "Ням! Очень вкусно!"
	noFoodThought = "Корма мало. Загляни в магазин!"
	cleanThought  = "Как чисто стало, красота!"
)

// Feed скармливает amount порций.
//
// Ошибки:
//   - ErrInvalidAmount — amount ≤ 0, ничего не меняется
//   - ErrNotEnoughFood — корма мало; в журнал добавляется одна запись, больше ничего
func (g *Game) Feed(ctx context.Context, amount int) (View, error) {
	if amount <= 0 {
		return g.View(), common.ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	var (
		failErr error
		gain    progression.Gain
		outcome streak.Outcome
	)
	state := g.store.Update(func(s *pet.PetState) {
		if s.FoodStock < amount {
			s.AddEvent(fmt.Sprintf("Корма не хватает: нужно %s, в запасе %s.",
				common.FormatPortions(amount), common.FormatPortions(s.FoodStock)), now)
			failErr = common.ErrNotEnoughFood
			return
		}

		// Дебафф считается до кормления: голод ещё не утолён
		debuffed := progression.IsDebuffed(*s, decay.Hunger(now, s.LastFedAt))

		s.FoodStock -= amount
		outcome = streak.Apply(s, now, g.loc)
		s.LastFedAt = now
		gain = progression.GainExperience(s, amount*ExperiencePerFood, debuffed, now)
		s.AddEvent(fmt.Sprintf("Покормили питомца: %s.", common.FormatPortions(amount)), now)
		g.syncDebuff(s, now)
	})

	v := g.commit(ctx, state, now)
	if failErr != nil {
		g.notify(func(p Presenter) { p.Thought(ctx, noFoodThought) })
		return v, failErr
	}

	log.WithFields(log.Fields{
		"amount":    amount,
		"gained":    gain.Effective,
		"levels_up": gain.LevelsUp,
		"streak":    outcome.String(),
	}).Info("Питомца покормили")

	g.notify(func(p Presenter) { p.Thought(ctx, fedThought) })
	if gain.LevelsUp > 0 {
		g.notify(func(p Presenter) { p.Thought(ctx, fmt.Sprintf("Новый уровень! Ур. %d!", state.Level)) })
	}
	return v, nil
}

// BuyFood покупает units порций корма за монеты.
func (g *Game) BuyFood(ctx context.Context, units int) (View, error) {
	if units <= 0 {
		return g.View(), common.ErrInvalidAmount
	}

	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	var buyErr error
	state := g.store.Update(func(s *pet.PetState) {
		purchase, err := g.shop.BuyFood(s, units, now)
		if err != nil {
			buyErr = err
			return
		}
		log.WithFields(log.Fields{"units": purchase.Units, "cost": purchase.Cost}).Info("Куплен корм")
		g.syncDebuff(s, now)
	})
	return g.commit(ctx, state, now), buyErr
}

// OpenChallenge открывает викторину уборки.
// При чистоте от 80 отказывает с ErrAlreadyClean и одной записью в журнале.
func (g *Game) OpenChallenge(ctx context.Context) (View, error) {
	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	current := g.store.Get()
	session, err := g.gate.Open(current.Cleanliness)
	switch {
	case errors.Is(err, common.ErrAlreadyClean):
		state := g.store.Update(func(s *pet.PetState) {
			s.AddEvent(quiz.AlreadyCleanMessage, now)
		})
		v := g.commit(ctx, state, now)
		g.notify(func(p Presenter) { p.Thought(ctx, quiz.AlreadyCleanMessage) })
		return v, err
	case err != nil:
		log.WithError(err).Error("Не удалось открыть викторину")
		return buildView(current, now, g.gate), err
	}

	log.WithField("session", session.ID).Debug("Викторина открыта")
	g.notify(func(p Presenter) { p.QuizChanged(ctx, &session) })
	return buildView(current, now, g.gate), nil
}

// Answer принимает ответ на открытую викторину (index с нуля).
// Верный ответ: +30 чистоты, сброс отсчёта загрязнения, событие и автозакрытие.
// Неверный: подсказка в сессии, викторина остаётся открытой.
func (g *Game) Answer(ctx context.Context, index int) (View, error) {
	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	res, err := g.gate.Answer(index)
	if err != nil {
		return buildView(g.store.Get(), now, g.gate), err
	}
	g.notify(func(p Presenter) { p.QuizChanged(ctx, &res.Session) })
	if !res.Correct {
		return buildView(g.store.Get(), now, g.gate), nil
	}

	state := g.store.Update(func(s *pet.PetState) {
		quiz.Restore(s, quiz.QuizReward, now)
		s.AddEvent(quiz.QuizCleanedMessage, now)
		g.syncDebuff(s, now)
	})
	v := g.commit(ctx, state, now)
	g.notify(func(p Presenter) { p.Thought(ctx, cleanThought) })

	log.WithField("cleanliness", state.Cleanliness).Info("Викторина решена, дом убран")
	return v, nil
}

// CloseChallenge закрывает викторину вручную и отменяет автозакрытие.
func (g *Game) CloseChallenge(ctx context.Context) View {
	g.mu.Lock()
	defer g.unlock()

	if g.gate.Close() {
		g.notify(func(p Presenter) { p.QuizChanged(ctx, nil) })
	}
	return buildView(g.store.Get(), g.clock.Now(), g.gate)
}

// CleanInstantly — быстрая уборка без викторины: +15 чистоты.
func (g *Game) CleanInstantly(ctx context.Context) View {
	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	state := g.store.Update(func(s *pet.PetState) {
		quiz.Restore(s, quiz.InstantClean, now)
		s.AddEvent(quiz.InstantCleanMessage, now)
		g.syncDebuff(s, now)
	})
	return g.commit(ctx, state, now)
}

// Reset заново создаёт питомца: все поля по умолчанию, отсчёты от now,
// журнал из одной записи. Ключ сохранения остаётся тем же.
func (g *Game) Reset(ctx context.Context) View {
	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	if g.gate.Close() {
		g.notify(func(p Presenter) { p.QuizChanged(ctx, nil) })
	}
	g.reminder.Reset()
	g.lastHungerLabel = ""

	fresh := pet.Defaults(g.name, now, g.loc)
	fresh.AddEvent(ResetMessage, now)
	state := g.store.Replace(fresh)

	log.WithField("name", state.Name).Info("Питомец сброшен")
	return g.commit(ctx, state, now)
}

// Tick — периодическое обновление: распад чистоты, дебафф, сохранение.
func (g *Game) Tick(ctx context.Context) {
	g.mu.Lock()
	defer g.unlock()
	now := g.clock.Now()

	state := g.store.Update(func(s *pet.PetState) {
		g.refresh(s, now)
	})
	g.commit(ctx, state, now)
}

// RemindStreak напоминает о серии, если её вот-вот потеряют.
// Запись не меняется. Возвращает true, если напоминание отправлено.
func (g *Game) RemindStreak(ctx context.Context) bool {
	g.mu.Lock()
	defer g.unlock()

	msg, ok := g.reminder.Check(g.store.Get(), g.clock.Now(), g.loc)
	if !ok {
		return false
	}
	g.notify(func(p Presenter) { p.Reminder(ctx, msg) })
	log.Info("Отправлено напоминание о серии")
	return true
}
