// Package main — точка входа демона питомца.
// Загружает конфигурацию, инициализирует приложение и запускает.
// Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/app"
	"serotonyl.ru/algopet/internal/config"
)

func main() {
	// Настраиваем логирование
	setupLogging()

	// .env нужен только для локального запуска, в docker переменные приходят снаружи
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Не удалось прочитать .env")
	}

	log.Info("=== Питомец просыпается ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Устанавливаем уровень логирования из конфига
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	// Контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.Close()

	// Запуск игры: распад за время простоя, сохранение, планировщик
	if err := application.Game.Start(ctx); err != nil {
		log.WithError(err).Fatal("Не удалось запустить игру")
	}

	// Обрабатываем сигналы остановки (Ctrl+C, docker stop)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if application.Bot != nil {
		go func() {
			if err := application.Bot.Start(ctx); err != nil {
				log.WithError(err).Error("Бот остановился с ошибкой")
			}
		}()
	}

	log.WithField("storage", cfg.StorageDriver).Info("=== Питомец готов ===")

	sig := <-quit
	log.Infof("Получен сигнал %s, останавливаемся...", sig)

	// Отменяем контекст — все горутины начнут завершаться
	cancel()
	application.Game.Stop(context.Background())

	log.Info("=== Питомец уснул ===")
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
