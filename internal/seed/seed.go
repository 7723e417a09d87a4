package seed

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otarbekov/tradequest/configs"
	"github.com/otarbekov/tradequest/internal/ledger"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/models"
	"github.com/otarbekov/tradequest/internal/store"
)

var demoUsers = []struct {
	TelegramID int64
	Username   string
	IsAdmin    bool
}{
	{900000001, "demo_trader_1", true},
	{900000002, "demo_trader_2", false},
	{900000003, "demo_trader_3", false},
}

// Run ensures the SystemConfig singleton exists and, in dev, creates a few
// demo telegram users with the configured initial balance.
func Run() {
	db := store.DB

	cfg, err := ledger.LoadConfig(db)
	if err != nil {
		logger.Log.Fatal("failed to ensure system config", zap.Error(err))
	}

	if configs.AppConfig.Env != "dev" {
		return
	}

	var count int64
	ids := make([]int64, 0, len(demoUsers))
	for _, u := range demoUsers {
		ids = append(ids, u.TelegramID)
	}
	if err := db.Model(&models.User{}).Where("telegram_id IN ?", ids).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count >= int64(len(demoUsers)) {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, u := range demoUsers {
			user := models.User{
				TelegramID:     u.TelegramID,
				Username:       u.Username,
				VirtualBalance: cfg.InitialBalance,
				XP:             0,
				Level:          1,
				IsAdmin:        u.IsAdmin,
			}
			if err := tx.Where("telegram_id = ?", u.TelegramID).FirstOrCreate(&user).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded demo users", zap.Int("count", len(demoUsers)))
}
