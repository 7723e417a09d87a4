package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/otarbekov/tradequest/internal/handlers"
	appmw "github.com/otarbekov/tradequest/internal/middleware"
)

func NewRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/auth/telegram", handlers.TelegramLoginHandler)
	r.With(appmw.Authenticated).Get("/auth/me", handlers.MeHandler)

	r.With(appmw.Authenticated).Post("/api/trade/execute", handlers.ExecuteTradeHandler)

	r.With(appmw.Authenticated).Get("/api/trades", handlers.TradesHandler)

	r.With(appmw.Authenticated).Post("/api/xp/exchange", handlers.ExchangeXPHandler)

	r.With(appmw.Authenticated).Get("/api/leaderboard", handlers.LeaderboardHandler)

	r.With(appmw.Authenticated).Get("/api/admin/config", handlers.GetSystemConfigHandler)

	r.With(appmw.Authenticated).Post("/api/admin/config", handlers.UpdateSystemConfigHandler)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
