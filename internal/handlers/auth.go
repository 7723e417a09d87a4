package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/otarbekov/tradequest/configs"
	"github.com/otarbekov/tradequest/internal/httputil"
	"github.com/otarbekov/tradequest/internal/ledger"
	"github.com/otarbekov/tradequest/internal/logger"
	"github.com/otarbekov/tradequest/internal/middleware"
	"github.com/otarbekov/tradequest/internal/models"
	"github.com/otarbekov/tradequest/internal/store"
	"github.com/otarbekov/tradequest/internal/telegram"
)

type UserResponse struct {
	ID             uint            `json:"id"`
	TelegramID     int64           `json:"telegramId"`
	Username       string          `json:"username"`
	VirtualBalance decimal.Decimal `json:"virtualBalance"`
	XP             int64           `json:"xp"`
	Level          int             `json:"level"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TelegramLoginHandler verifies a Telegram login-widget payload, upserts the
// user (first login creates the account with the configured initial balance)
// and issues the session JWT as an httpOnly cookie.
func TelegramLoginHandler(w http.ResponseWriter, r *http.Request) {
	var data telegram.AuthData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := telegram.Verify(data, configs.AppConfig.Telegram.BotToken, time.Now()); err != nil {
		logger.Log.Warn("telegram auth rejected", zap.Int64("telegram_id", data.ID), zap.Error(err))
		httputil.WriteError(w, http.StatusUnauthorized, "invalid telegram authentication")
		return
	}

	cfg, err := ledger.LoadConfig(store.DB)
	if err != nil {
		logger.Log.Error("failed to load system config", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := upsertTelegramUser(data, cfg)
	if err != nil {
		logger.Log.Error("failed to upsert telegram user", zap.Int64("telegram_id", data.ID), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ttl := time.Duration(configs.AppConfig.JWT.TTLHours) * time.Hour
	claims := jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.AppConfig.JWT.SECRET))
	if err != nil {
		logger.Log.Error("failed to sign jwt", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   configs.AppConfig.Env == "production",
		SameSite: http.SameSiteStrictMode,
	})

	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Token: signed, User: userResponse(user)})
}

// MeHandler returns the caller's current account state plus trade count.
func MeHandler(w http.ResponseWriter, r *http.Request) {
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

	var tradeCount int64
	if err := store.DB.Model(&models.Trade{}).Where("user_id = ?", userID).Count(&tradeCount).Error; err != nil {
		logger.Log.Error("failed to count trades", zap.Uint("user_id", userID), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, struct {
		UserResponse
		TradeCount int64 `json:"tradeCount"`
	}{userResponse(user), tradeCount})
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		TelegramID:     user.TelegramID,
		Username:       user.Username,
		VirtualBalance: user.VirtualBalance,
		XP:             user.XP,
		Level:          user.Level,
	}
}

func upsertTelegramUser(data telegram.AuthData, cfg ledger.Config) (*models.User, error) {
	var user models.User
	err := store.DB.Where("telegram_id = ?", data.ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			TelegramID:     data.ID,
			Username:       data.Username,
			FirstName:      data.FirstName,
			PhotoURL:       data.PhotoURL,
			VirtualBalance: cfg.InitialBalance,
			XP:             0,
			Level:          1,
		}
		cerr := store.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoNothing: true,
		}).Create(&user).Error
		if cerr != nil {
			return nil, cerr
		}
		if user.ID != 0 {
			return &user, nil
		}
		// Lost the race to a concurrent first login; read the winner's row.
		if rerr := store.DB.Where("telegram_id = ?", data.ID).First(&user).Error; rerr != nil {
			return nil, rerr
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if data.Username != "" && data.Username != user.Username {
		updates["username"] = data.Username
		user.Username = data.Username
	}
	if data.FirstName != "" && data.FirstName != user.FirstName {
		updates["first_name"] = data.FirstName
		user.FirstName = data.FirstName
	}
	if data.PhotoURL != "" && data.PhotoURL != user.PhotoURL {
		updates["photo_url"] = data.PhotoURL
		user.PhotoURL = data.PhotoURL
	}
	if len(updates) > 0 {
		if uerr := store.DB.Model(&user).Updates(updates).Error; uerr != nil {
			return nil, uerr
		}
	}

	return &user, nil
}
