package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	TelegramID     int64           `gorm:"uniqueIndex;not null"`
	Username       string          `gorm:"size:64"`
	FirstName      string          `gorm:"size:64"`
	PhotoURL       string          `gorm:"size:512"`
	VirtualBalance decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	XP             int64           `gorm:"not null;default:0"`
	Level          int             `gorm:"not null;default:1"`
	IsAdmin        bool            `gorm:"not null;default:false"`
}

type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Trade rows are append-only: created inside the same transaction as the
// balance mutation they belong to, never updated or deleted afterwards.
type Trade struct {
	ID        uint            `gorm:"primarykey"`
	Ref       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	UserID    uint            `gorm:"index:idx_trades_user_created;not null"`
	Symbol    string          `gorm:"size:20;not null"`
	Type      TradeType       `gorm:"size:4;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Price     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Total     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	CreatedAt time.Time       `gorm:"index:idx_trades_user_created"`
}

// SystemConfig is a singleton row (id = "config") holding platform tunables.
type SystemConfig struct {
	ID             string          `gorm:"primarykey;size:16"`
	XPPerTrade     int64           `gorm:"not null"`
	InitialBalance decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	UpdatedAt      time.Time
}
