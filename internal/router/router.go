// File: internal/router/router.go
package router

import (
	"polly-relay/internal/cache"
	"polly-relay/internal/database"
	"polly-relay/internal/handler"
	"polly-relay/internal/handler/auth"
	"polly-relay/internal/logging"
	"polly-relay/internal/middleware"
	"polly-relay/internal/notify"
	"polly-relay/internal/service"
	"polly-relay/internal/speech"
	"polly-relay/internal/worker"

	"github.com/labstack/echo/v4"
)

// Deps 由 cmd/service 建立後注入，Cache 可為 nil
type Deps struct {
	DB       database.DB
	Cache    cache.Cache
	Synth    speech.Synthesizer
	Defaults speech.Defaults
	Tokens   *service.TokenIssuer
	Notifier notify.Notifier
	Workers  worker.Pool
	Log      logging.Logger
}

// Setup 註冊所有路由
func Setup(e *echo.Echo, d Deps) {
	// 文字轉語音
	e.POST("/speak", handler.SpeakHandler(d.Synth, d.Defaults, d.Log))

	api := e.Group("/api")

	// 健康檢查
	api.GET("/ping", handler.PingHandler(d.DB, d.Cache))

	// 帳號
	apiAuth := api.Group("/auth")
	apiAuth.POST("/register", auth.RegisterHandler(d.DB, d.Log))
	apiAuth.POST("/login", auth.LoginHandler(d.DB, d.Tokens, d.Log))
	apiAuth.POST("/change-password", auth.ChangePasswordHandler(d.DB, d.Notifier, d.Workers, d.Log))
	apiAuth.GET("/me", auth.MeHandler(d.DB, d.Log), middleware.RequireAuth(d.Tokens))
}
