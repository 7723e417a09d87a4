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

type SystemConfigResponse struct {
	XPPerTrade     int64           `json:"xpPerTrade"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

func GetSystemConfigHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserID(r.Context()); !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cfg, err := ledger.LoadConfig(store.DB)
	if err != nil {
		logger.Log.Error("failed to load system config", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SystemConfigResponse{
		XPPerTrade:     cfg.XPPerTrade,
		InitialBalance: cfg.InitialBalance,
	})
}

// UpdateSystemConfigHandler changes platform tunables; admin only.
func UpdateSystemConfigHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := ledger.NewExecutor(store.DB).Account(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		logger.Log.Error("failed to fetch account", zap.Uint("user_id", userID), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !user.IsAdmin {
		httputil.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	var body struct {
		XPPerTrade     *int64           `json:"xpPerTrade"`
		InitialBalance *decimal.Decimal `json:"initialBalance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := ledger.UpdateConfig(store.DB, body.XPPerTrade, body.InitialBalance)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidInput) {
			httputil.WriteError(w, http.StatusBadRequest, "config values must be positive")
			return
		}
		logger.Log.Error("failed to update system config", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SystemConfigResponse{
		XPPerTrade:     cfg.XPPerTrade,
		InitialBalance: cfg.InitialBalance,
	})
}
