package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otarbekov/tradequest/internal/httputil"
	"github.com/otarbekov/tradequest/internal/ledger"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/middleware"
	"github.com/otarbekov/tradequest/internal/store"
)

type XPExchangeRequest struct {
	XPAmount int64 `json:"xpAmount"`
}

type XPExchangeResponse struct {
	XPRemoved    int64           `json:"xpRemoved"`
	BalanceAdded decimal.Decimal `json:"balanceAdded"`
	NewBalance   decimal.Decimal `json:"newBalance"`
	NewXP        int64           `json:"newXp"`
}

// ExchangeXPHandler converts the caller's XP into virtual balance.
func ExchangeXPHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body XPExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := ledger.NewExecutor(store.DB).ExchangeXP(r.Context(), userID, body.XPAmount)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidInput):
			httputil.WriteError(w, http.StatusBadRequest, "invalid XP amount")
		case errors.Is(err, ledger.ErrInsufficientXP):
			httputil.WriteError(w, http.StatusBadRequest, "insufficient XP")
		case errors.Is(err, ledger.ErrAccountNotFound):
			logger.Log.Error("account vanished during XP exchange", zap.Uint("user_id", userID))
			httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		default:
			logger.Log.Error("XP exchange failed", zap.Uint("user_id", userID), zap.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, XPExchangeResponse{
		XPRemoved:    result.XPRemoved,
		BalanceAdded: result.BalanceAdded,
		NewBalance:   result.NewBalance,
		NewXP:        result.NewXP,
	})
}
