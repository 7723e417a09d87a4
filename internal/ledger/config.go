package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otarbekov/tradequest/internal/models"
)

const (
	ConfigRowID       = "config"
	DefaultXPPerTrade = 10
)

var defaultInitialBalance = decimal.RequireFromString("10000.00")

// Config is the platform-tunable input to the executor, loaded from the
// SystemConfig row once per request and passed in by value.
type Config struct {
	XPPerTrade     int64
	InitialBalance decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		XPPerTrade:     DefaultXPPerTrade,
		InitialBalance: defaultInitialBalance,
	}
}

// LoadConfig reads the SystemConfig singleton, creating it with defaults on
// first use.
func LoadConfig(db *gorm.DB) (Config, error) {
	var row models.SystemConfig
	err := db.First(&row, "id = ?", ConfigRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.SystemConfig{
			ID:             ConfigRowID,
			XPPerTrade:     DefaultXPPerTrade,
			InitialBalance: defaultInitialBalance,
		}
		if cerr := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; cerr != nil {
			return Config{}, fmt.Errorf("create system config: %w", cerr)
		}
		// A concurrent creator may have won; read back the committed row.
		if rerr := db.First(&row, "id = ?", ConfigRowID).Error; rerr != nil {
			return Config{}, fmt.Errorf("reload system config: %w", rerr)
		}
	} else if err != nil {
		return Config{}, fmt.Errorf("load system config: %w", err)
	}

	return Config{XPPerTrade: row.XPPerTrade, InitialBalance: row.InitialBalance}, nil
}

// UpdateConfig upserts the SystemConfig singleton. Nil fields are left as-is.
func UpdateConfig(db *gorm.DB, xpPerTrade *int64, initialBalance *decimal.Decimal) (Config, error) {
	current, err := LoadConfig(db)
	if err != nil {
		return Config{}, err
	}

	if xpPerTrade != nil {
		if *xpPerTrade <= 0 {
			return Config{}, ErrInvalidInput
		}
		current.XPPerTrade = *xpPerTrade
	}
	if initialBalance != nil {
		if !initialBalance.IsPositive() {
			return Config{}, ErrInvalidInput
		}
		current.InitialBalance = *initialBalance
	}

	err = db.Model(&models.SystemConfig{}).
		Where("id = ?", ConfigRowID).
		Updates(map[string]interface{}{
			"xp_per_trade":    current.XPPerTrade,
			"initial_balance": current.InitialBalance,
		}).Error
	if err != nil {
		return Config{}, fmt.Errorf("update system config: %w", err)
	}

	return current, nil
}
