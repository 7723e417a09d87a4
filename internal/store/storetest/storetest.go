// Package storetest opens a real postgres database for integration tests.
// Tests using it are skipped unless TEST_DATABASE_DSN is set.
package storetest

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/otarbekov/tradequest/internal/models"
)

const dsnEnv = "TEST_DATABASE_DSN"

// NewTestDB connects to the postgres instance named by TEST_DATABASE_DSN,
// migrates the schema and truncates all tables so every test starts clean.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", dsnEnv)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Trade{}, &models.SystemConfig{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	if err := db.Exec("TRUNCATE users, trades, system_configs RESTART IDENTITY").Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, derr := db.DB()
		if derr == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateUser inserts a user with the given balance/XP and returns it.
func CreateUser(t *testing.T, db *gorm.DB, telegramID int64, balance string, xp int64) *models.User {
	t.Helper()

	user := models.User{
		TelegramID:     telegramID,
		Username:       "tester",
		VirtualBalance: mustDecimal(t, balance),
		XP:             xp,
		Level:          int(xp/1000) + 1,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return &user
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
