package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"serotonyl.ru/algopet/internal/config"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		AppTimezone:             "UTC",
		PetName:                 "Тестокот",
		PetSaveKey:              "test",
		TickInterval:            time.Hour,
		QuizAutoClose:           time.Second,
		ShopFoodPrice:           10,
		StreakReminderThreshold: 3,
		StreakReminderSchedule:  "0 * * * *",
		StorageDriver:           driver,
	}
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.StorageMemory))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Bot != nil {
		t.Error("Expected bot to be disabled")
	}
	if got := a.Game.Snapshot().Name; got != "Тестокот" {
		t.Errorf("Expected pet name Тестокот, got %q", got)
	}
}

func TestNew_SQLiteSurvivesRestart(t *testing.T) {
	cfg := testConfig(config.StorageSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "pet.db")
	ctx := context.Background()

	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.Game.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := a.Game.Feed(ctx, 2); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	a.Game.Stop(ctx)
	a.Close()

	b, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New after restart failed: %v", err)
	}
	defer b.Close()

	if got := b.Game.Snapshot().FoodStock; got != 3 {
		t.Errorf("Expected food stock 3 after restart, got %d", got)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), testConfig("redis")); err == nil {
		t.Error("Expected error for unknown driver")
	}
}
