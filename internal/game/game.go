// Package game — контекст игры: владеет записью питомца, часами,
// викториной и портами хранения и отображения.
// Все операции идут под одной блокировкой, то есть игра ведёт себя
// как единственный логический актор.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/clock"
	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/decay"
	"serotonyl.ru/algopet/internal/features/economy"
	"serotonyl.ru/algopet/internal/features/pet"
	"serotonyl.ru/algopet/internal/features/progression"
	"serotonyl.ru/algopet/internal/features/quiz"
	"serotonyl.ru/algopet/internal/features/streak"
)

// Options — настройки игры. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	Name              string         // Имя питомца при создании и сбросе
	Location          *time.Location // Пояс для календарных дат серии
	QuizAutoClose     time.Duration  // Задержка автозакрытия решённой викторины
	ReminderThreshold int            // Серия, с которой шлём напоминание
	FoodPrice         int            // Цена порции корма в монетах
	Bank              []quiz.Question
	Picker            quiz.Picker
}

// Deps — внешние зависимости игры.
type Deps struct {
	Clock       clock.Clock
	Persistence Persistence
	Presenter   Presenter
}

// Game — контекст одной сессии питомца.
type Game struct {
	mu sync.Mutex

	store     *pet.Store
	clock     clock.Clock
	loc       *time.Location
	gate      *quiz.Gate
	shop      *economy.Shop
	reminder  *streak.Reminder
	saver     Persistence
	presenter Presenter
	scheduler Scheduler
	name      string

	started         bool
	pending         []func(Presenter) // уведомления, ждущие отпускания g.mu
	lastHungerLabel string
}

// New создаёт игру и загружает сохранение.
// Ошибки загрузки не фатальны: вместо испорченного сохранения берётся новый питомец.
func New(ctx context.Context, deps Deps, opts Options) *Game {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Presenter == nil {
		deps.Presenter = LogPresenter{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Bank == nil {
		opts.Bank = quiz.DefaultBank
	}
	if opts.Picker == nil {
		opts.Picker = rand.New(rand.NewSource(deps.Clock.Now().UnixNano()))
	}

	g := &Game{
		clock:     deps.Clock,
		loc:       opts.Location,
		gate:      quiz.NewGate(opts.Bank, opts.Picker, deps.Clock, opts.QuizAutoClose),
		shop:      economy.NewShop(opts.FoodPrice),
		reminder:  streak.NewReminder(opts.ReminderThreshold),
		saver:     deps.Persistence,
		presenter: deps.Presenter,
		name:      opts.Name,
	}

	defaults := pet.Defaults(opts.Name, deps.Clock.Now(), opts.Location)
	g.store = pet.NewStore(g.load(ctx, defaults))
	g.store.OnChange(func(s pet.PetState) {
		log.WithFields(log.Fields{
			"level":       s.Level,
			"experience":  s.Experience,
			"coins":       s.Coins,
			"food":        s.FoodStock,
			"cleanliness": s.Cleanliness,
			"streak":      s.FeedStreak,
		}).Debug("Запись питомца изменена")
	})
	g.gate.OnExpire(g.expireQuiz)

	return g
}

// AttachScheduler подключает периодический тик. Start и Stop игры
// запускают и останавливают его.
func (g *Game) AttachScheduler(s Scheduler) {
	g.mu.Lock()
	g.scheduler = s
	g.mu.Unlock()
}

// Start начинает сессию: пишет стартовое событие в пустой журнал,
// применяет накопившийся распад, сохраняет и запускает тик.
// Повторный вызов перезапускает тик, не создавая второй.
func (g *Game) Start(ctx context.Context) error {
	g.mu.Lock()
	now := g.clock.Now()
	g.lastHungerLabel = ""
	state := g.store.Update(func(s *pet.PetState) {
		if !g.started && len(s.Events) == 0 {
			s.AddEvent(fmt.Sprintf("%s отправился в приключение!", s.Name), now)
		}
		g.refresh(s, now)
	})
	g.started = true
	g.commit(ctx, state, now)
	sched := g.scheduler
	g.unlock()

	log.WithFields(log.Fields{
		"name":  state.Name,
		"level": state.Level,
	}).Info("Игра запущена")

	// Тик берёт ту же блокировку, поэтому управляем им снаружи
	if sched != nil {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("ошибка запуска планировщика: %w", err)
		}
	}
	return nil
}

// Stop останавливает тик и закрывает викторину.
// После возврата таймеры игры больше не срабатывают.
func (g *Game) Stop(ctx context.Context) {
	g.mu.Lock()
	sched := g.scheduler
	g.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}

	g.mu.Lock()
	defer g.unlock()
	if g.gate.Close() {
		g.notify(func(p Presenter) { p.QuizChanged(ctx, nil) })
	}
	g.started = false
	g.lastHungerLabel = ""
	log.Info("Игра остановлена")
}

// View возвращает снимок для отображения без изменения записи.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return buildView(g.store.Get(), g.clock.Now(), g.gate)
}

// Snapshot возвращает копию записи питомца.
func (g *Game) Snapshot() pet.PetState {
	return g.store.Get()
}

// load читает сохранение и подставляет значения по умолчанию.
func (g *Game) load(ctx context.Context, defaults pet.PetState) pet.PetState {
	if g.saver == nil {
		return defaults
	}

	blob, err := g.saver.Load(ctx)
	switch {
	case errors.Is(err, common.ErrNoSave):
		log.Info("Сохранение не найдено, создаём нового питомца")
		return defaults
	case err != nil:
		log.WithError(err).Warn("Не удалось прочитать сохранение, создаём нового питомца")
		return defaults
	}

	s, repaired, err := pet.Decode(blob, defaults)
	if err != nil {
		log.WithError(err).Warn("Сохранение повреждено, создаём нового питомца")
		return defaults
	}
	if len(repaired) > 0 {
		log.WithField("fields", repaired).Warn("Часть полей сохранения заменена значениями по умолчанию")
	}
	if levels := progression.Settle(&s, g.clock.Now()); levels > 0 {
		log.WithFields(log.Fields{
			"levels": levels,
			"level":  s.Level,
		}).Info("Накопленный опыт переведён в уровни")
	}
	return s
}

// refresh применяет распад чистоты и сверяет дебафф. Вызывается под g.mu.
func (g *Game) refresh(s *pet.PetState, now time.Time) {
	if lost := decay.ApplyCleanlinessDecay(s, now); lost > 0 {
		log.WithField("lost", lost).Debug("Чистота снизилась")
	}
	g.syncDebuff(s, now)
}

func (g *Game) syncDebuff(s *pet.PetState, now time.Time) {
	tr := progression.SyncDebuff(s, decay.Hunger(now, s.LastFedAt), now)
	if tr != progression.TransitionNone {
		log.WithField("transition", tr.String()).Info("Изменился дебафф голода")
	}
}

// commit сохраняет запись, показывает снимок и мысль о голоде,
// если сменилась стадия. Вызывается под g.mu.
func (g *Game) commit(ctx context.Context, s pet.PetState, now time.Time) View {
	g.persist(ctx, s)

	v := buildView(s, now, g.gate)
	g.notify(func(p Presenter) { p.Render(ctx, v) })

	if v.Hunger.Label != g.lastHungerLabel {
		g.lastHungerLabel = v.Hunger.Label
		if v.Hunger.Thought != "" {
			g.notify(func(p Presenter) { p.Thought(ctx, v.Hunger.Thought) })
		}
	}
	return v
}

// persist сохраняет запись. Ошибка только логируется: игра продолжается.
func (g *Game) persist(ctx context.Context, s pet.PetState) {
	if g.saver == nil {
		return
	}
	blob, err := pet.Encode(s)
	if err != nil {
		log.WithError(err).Error("Не удалось сериализовать питомца")
		return
	}
	if err := g.saver.Save(ctx, blob); err != nil {
		log.WithError(err).Error("Не удалось сохранить питомца")
	}
}

// expireQuiz — колбэк таймера автозакрытия викторины.
func (g *Game) expireQuiz(sessionID uint64) {
	g.mu.Lock()
	defer g.unlock()
	if g.gate.Expire(sessionID) {
		log.WithField("session", sessionID).Debug("Викторина закрыта автоматически")
		g.notify(func(p Presenter) { p.QuizChanged(context.Background(), nil) })
	}
}

// notify откладывает вызов презентера до отпускания блокировки.
// Вызывается под g.mu.
func (g *Game) notify(fn func(Presenter)) {
	g.pending = append(g.pending, fn)
}

// unlock отпускает g.mu и только потом доставляет накопленные уведомления.
// Презентер никогда не вызывается под блокировкой игры.
func (g *Game) unlock() {
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, fn := range pending {
		fn(g.presenter)
	}
}
