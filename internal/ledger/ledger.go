// Package ledger owns every mutation of a user's virtual balance and XP.
// Each operation runs as one database transaction: the account row is
// re-read under a row lock, validated against fresh state and updated with
// relative deltas, so overlapping requests for the same user serialize on
// the lock and can never both commit from the same stale read.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otarbekov/tradequest/internal/models"
)

// XP converts to balance at a fixed rate: 10 XP = 1.00 currency unit.
var xpExchangeRate = decimal.RequireFromString("0.10")

// Money amounts are kept at two fractional digits, rounded half-even.
const moneyScale = 2

type Executor struct {
	db *gorm.DB
}

func NewExecutor(db *gorm.DB) *Executor {
	return &Executor{db: db}
}

type TradeRequest struct {
	Symbol string
	Type   models.TradeType
	Amount decimal.Decimal
	Price  decimal.Decimal
}

func (r TradeRequest) Validate() error {
	if r.Symbol == "" || !r.Amount.IsPositive() || !r.Price.IsPositive() {
		return ErrInvalidInput
	}
	switch r.Type {
	case models.TradeBuy, models.TradeSell:
		return nil
	default:
		return ErrInvalidTradeType
	}
}

type ExchangeResult struct {
	XPRemoved    int64
	BalanceAdded decimal.Decimal
	NewBalance   decimal.Decimal
	NewXP        int64
}

// Account returns the current ledger state for a user. Read-only.
func (e *Executor) Account(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := e.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return &user, nil
}

// ExecuteTrade validates and applies one simulated trade. BUY requires the
// balance to cover amount*price; SELL always succeeds since the simulator
// tracks no holdings. Both award cfg.XPPerTrade XP and append a Trade row in
// the same transaction.
func (e *Executor) ExecuteTrade(ctx context.Context, userID uint, req TradeRequest, cfg Config) (*models.Trade, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	total := req.Amount.Mul(req.Price).RoundBank(moneyScale)

	var trade models.Trade
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}

		var balanceDelta decimal.Decimal
		switch req.Type {
		case models.TradeBuy:
			if user.VirtualBalance.LessThan(total) {
				return ErrInsufficientBalance
			}
			balanceDelta = total.Neg()
		case models.TradeSell:
			balanceDelta = total
		default:
			return ErrInvalidTradeType
		}

		if err := applyDelta(tx, userID, balanceDelta, cfg.XPPerTrade, user.XP+cfg.XPPerTrade); err != nil {
			return err
		}

		trade = models.Trade{
			Ref:    uuid.New(),
			UserID: userID,
			Symbol: req.Symbol,
			Type:   req.Type,
			Amount: req.Amount,
			Price:  req.Price,
			Total:  total,
		}
		if err := tx.Create(&trade).Error; err != nil {
			return fmt.Errorf("append trade: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &trade, nil
}

// ExchangeXP converts xpAmount XP into virtual balance at the fixed rate.
// No Trade row is written: this is a ledger-internal conversion.
func (e *Executor) ExchangeXP(ctx context.Context, userID uint, xpAmount int64) (*ExchangeResult, error) {
	if xpAmount <= 0 {
		return nil, ErrInvalidInput
	}

	gain := decimal.NewFromInt(xpAmount).Mul(xpExchangeRate).RoundBank(moneyScale)

	var result ExchangeResult
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}

		if user.XP < xpAmount {
			return ErrInsufficientXP
		}

		newXP := user.XP - xpAmount
		if err := applyDelta(tx, userID, gain, -xpAmount, newXP); err != nil {
			return err
		}

		result = ExchangeResult{
			XPRemoved:    xpAmount,
			BalanceAdded: gain,
			NewBalance:   user.VirtualBalance.Add(gain),
			NewXP:        newXP,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// LevelFor derives the stored level from an XP total: one level per 1000 XP.
func LevelFor(xp int64) int {
	return int(xp/1000) + 1
}

func lockAccount(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock account: %w", err)
	}
	return &user, nil
}

// applyDelta mutates balance and XP relative to their stored values; the
// caller holds the row lock, newXP is only used to refresh the stored level.
func applyDelta(tx *gorm.DB, userID uint, balanceDelta decimal.Decimal, xpDelta int64, newXP int64) error {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"virtual_balance": gorm.Expr("virtual_balance + ?", balanceDelta),
			"xp":              gorm.Expr("xp + ?", xpDelta),
			"level":           LevelFor(newXP),
		})
	if res.Error != nil {
		return fmt.Errorf("apply delta: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
