// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: открывает хранилище, создаёт игру, планировщик
// и, если включён, Telegram-бота.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/bot"
	"serotonyl.ru/algopet/internal/clock"
	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/config"
	"serotonyl.ru/algopet/internal/db/memory"
	"serotonyl.ru/algopet/internal/db/postgres"
	"serotonyl.ru/algopet/internal/db/sqlite"
	"serotonyl.ru/algopet/internal/game"
	"serotonyl.ru/algopet/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Game      *game.Game
	Scheduler *jobs.Scheduler
	Bot       *bot.Bot // nil, если бот выключен

	pool *pgxpool.Pool
	db   *sql.DB
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}
	clk := clock.Real{}
	loc := common.LoadLocation(cfg.AppTimezone)

	// === 1. Хранилище ===
	saver, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// === 2. Telegram Bot API ===
	var (
		api       *telego.Bot
		presenter game.Presenter = game.LogPresenter{}
	)
	if cfg.FeatureBotEnabled {
		var opts []telego.BotOption
		if cfg.AppEnv == "development" {
			opts = append(opts, telego.WithDefaultDebugLogger())
		}
		api, err = telego.NewBot(cfg.TelegramBotToken, opts...)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
		}
		if me, err := api.GetMe(ctx); err == nil {
			log.Infof("Авторизован как @%s", me.Username)
		} else {
			log.WithError(err).Warn("Не удалось получить данные бота")
		}
		if cfg.OwnerChatID != 0 {
			presenter = bot.NewPresenter(api, cfg.OwnerChatID)
		}
	}

	// === 3. Игра ===
	a.Game = game.New(ctx, game.Deps{
		Clock:       clk,
		Persistence: saver,
		Presenter:   presenter,
	}, game.Options{
		Name:              cfg.PetName,
		Location:          loc,
		QuizAutoClose:     cfg.QuizAutoClose,
		ReminderThreshold: cfg.StreakReminderThreshold,
		FoodPrice:         cfg.ShopFoodPrice,
	})

	// === 4. Планировщик задач ===
	a.Scheduler = jobs.NewScheduler(ctx, a.Game, jobs.Options{
		TickInterval:     cfg.TickInterval,
		ReminderSchedule: cfg.StreakReminderSchedule,
		Location:         loc,
	})
	a.Game.AttachScheduler(a.Scheduler)

	// === 5. Бот ===
	if api != nil {
		a.Bot = bot.New(api, cfg, a.Game, clk)
	}

	return a, nil
}

// openStorage выбирает хранилище сохранения по STORAGE_DRIVER.
func (a *App) openStorage(ctx context.Context, cfg *config.Config) (game.Persistence, error) {
	logger := log.WithField("driver", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		a.pool = pool
		logger.Info("Сохранения хранятся в PostgreSQL")
		return postgres.NewSaveRepository(pool, cfg.PetSaveKey), nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
		}
		a.db = db
		logger.WithField("path", cfg.SQLitePath).Info("Сохранения хранятся в SQLite")
		return sqlite.NewSaveRepository(db, cfg.PetSaveKey), nil

	case config.StorageMemory:
		logger.Warn("Сохранения живут только в памяти процесса")
		return memory.NewSaveRepository(), nil
	}
	return nil, fmt.Errorf("неизвестный STORAGE_DRIVER: %q", cfg.StorageDriver)
}

// Close освобождает соединения с хранилищем.
func (a *App) Close() {
	if a.Bot != nil {
		a.Bot.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия SQLite")
		}
	}
}
