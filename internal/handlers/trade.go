package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otarbekov/tradequest/internal/httputil"
	"github.com/otarbekov/tradequest/internal/ledger"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/middleware"
	"github.com/otarbekov/tradequest/internal/models"
	"github.com/otarbekov/tradequest/internal/store"
)

type TradeRequestBody struct {
	Symbol string          `json:"symbol"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Price  decimal.Decimal `json:"price"`
}

type TradeResponse struct {
	Ref       string          `json:"ref"`
	Symbol    string          `json:"symbol"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ExecuteTradeHandler runs one simulated trade for the authenticated user.
// The price comes from the client's feed and is accepted as-is.
func ExecuteTradeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body TradeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := ledger.LoadConfig(store.DB)
	if err != nil {
		logger.Log.Error("failed to load system config", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	trade, err := ledger.NewExecutor(store.DB).ExecuteTrade(r.Context(), userID, ledger.TradeRequest{
		Symbol: body.Symbol,
		Type:   models.TradeType(body.Type),
		Amount: body.Amount,
		Price:  body.Price,
	}, cfg)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidInput):
			httputil.WriteError(w, http.StatusBadRequest, "invalid trade parameters")
		case errors.Is(err, ledger.ErrInvalidTradeType):
			httputil.WriteError(w, http.StatusBadRequest, "invalid trade type")
		case errors.Is(err, ledger.ErrInsufficientBalance):
			httputil.WriteError(w, http.StatusBadRequest, "insufficient balance")
		case errors.Is(err, ledger.ErrAccountNotFound):
			logger.Log.Error("account vanished during trade", zap.Uint("user_id", userID))
			httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		default:
			logger.Log.Error("trade execution failed", zap.Uint("user_id", userID), zap.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, tradeResponse(trade))
}

// TradesHandler lists the caller's trade history, newest first.
func TradesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			httputil.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var trades []models.Trade
	err := store.DB.WithContext(r.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	if err != nil {
		logger.Log.Error("failed to fetch trades", zap.Uint("user_id", userID), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]TradeResponse, 0, len(trades))
	for i := range trades {
		out = append(out, tradeResponse(&trades[i]))
	}

	httputil.WriteJSON(w, http.StatusOK, struct {
		Trades []TradeResponse `json:"trades"`
	}{out})
}

func tradeResponse(t *models.Trade) TradeResponse {
	return TradeResponse{
		Ref:       t.Ref.String(),
		Symbol:    t.Symbol,
		Type:      string(t.Type),
		Amount:    t.Amount,
		Price:     t.Price,
		Total:     t.Total,
		CreatedAt: t.CreatedAt,
	}
}
