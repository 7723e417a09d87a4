package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otarbekov/tradequest/internal/cache"
	"github.com/otarbekov/tradequest/internal/httputil"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/middleware"
	"github.com/otarbekov/tradequest/internal/models"
	"github.com/otarbekov/tradequest/internal/store"
)

const leaderboardSize = 100

type LeaderboardEntry struct {
	ID             uint            `json:"id"`
	Username       string          `json:"username"`
	XP             int64           `json:"xp"`
	Level          int             `json:"level"`
	VirtualBalance decimal.Decimal `json:"virtualBalance"`
}

type LeaderboardResponse struct {
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	CurrentUserRank *int               `json:"currentUserRank"`
}

// LeaderboardHandler returns the top users by XP and the caller's rank
// within them (nil when outside the top).
func LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := topUsers(r.Context())
	if err != nil {
		logger.Log.Error("failed to fetch leaderboard", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var rank *int
	for i := range entries {
		if entries[i].ID == userID {
			pos := i + 1
			rank = &pos
			break
		}
	}

	httputil.WriteJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries, CurrentUserRank: rank})
}

func topUsers(ctx context.Context) ([]LeaderboardEntry, error) {
	if cache.Leaderboard != nil {
		if payload, ok := cache.Leaderboard.Get(ctx); ok {
			var entries []LeaderboardEntry
			if err := json.Unmarshal(payload, &entries); err == nil {
				return entries, nil
			}
		}
	}

	var entries []LeaderboardEntry
	err := store.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id, username, xp, level, virtual_balance").
		Order("xp DESC").
		Limit(leaderboardSize).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	if cache.Leaderboard != nil {
		if payload, merr := json.Marshal(entries); merr == nil {
			cache.Leaderboard.Set(ctx, payload)
		}
	}

	return entries, nil
}
