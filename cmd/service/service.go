// @title        Polly Relay API
// @version      1.0
// @description  文字轉語音轉送與帳號管理的後端 API 文件
// @host         localhost:3000
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polly-relay/internal/cache"
	"polly-relay/internal/config"
	"polly-relay/internal/database"
	"polly-relay/internal/logging"
	"polly-relay/internal/middleware"
	"polly-relay/internal/notify"
	"polly-relay/internal/router"
	"polly-relay/internal/service"
	"polly-relay/internal/speech"
	"polly-relay/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	_ "polly-relay/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 10 * time.Second

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newSynthesizer  = func(ctx context.Context, cfg config.SpeechConfig) (speech.Synthesizer, error) {
		return speech.NewPollySynthesizer(ctx, cfg)
	}
	newNotifier   = notify.New
	newWorkerPool = worker.NewPool
	startServer   = serve
	exitFunc      = os.Exit

	logOutput io.Writer = os.Stdout
)

// serve 啟動 HTTP 服務，ctx 結束時優雅關閉
func serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("設定載入失敗: %w", err)
	}

	level, _ := cfg.SlogLevel()
	logger := logging.NewJSON(logOutput, level).With("env", cfg.App.Env)

	tokens, err := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("JWT 設定錯誤: %w", err)
	}

	db, err := newPgxPool(ctx, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer db.Close()

	if cfg.DB.RunMigrations {
		if err := runMigrationsFn(cfg.DB.URL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	synth, err := newSynthesizer(ctx, cfg.Speech)
	if err != nil {
		return fmt.Errorf("Polly 初始化失敗: %w", err)
	}

	// Redis 為選用，只用於語音快取與健康檢查
	var cch cache.Cache
	if cfg.CacheEnabled() {
		cch, err = newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("Redis 連線失敗: %w", err)
		}
		defer cch.Close()
	}

	// 在 Redis 之後建立，關閉時先排空背景寫入再關連線
	wp := newWorkerPool(cfg.Worker.Count, logger)
	defer wp.Stop()

	if cch != nil {
		synth = speech.NewCachedSynthesizer(synth, cch, cfg.Speech.CacheTTL, wp, logger)
		logger.Info(ctx, "speech cache enabled", "addr", cfg.Redis.Addr)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.CORS(cfg.HTTP.AllowedOrigins))

	router.Setup(e, router.Deps{
		DB:    db,
		Cache: cch,
		Synth: synth,
		Defaults: speech.Defaults{
			Text:  cfg.Speech.DefaultText,
			Voice: cfg.Speech.DefaultVoice,
		},
		Tokens:   tokens,
		Notifier: newNotifier(cfg.SendGrid),
		Workers:  wp,
		Log:      logger,
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	logger.Info(ctx, "server starting", "addr", cfg.Addr())
	return startServer(ctx, e, cfg.Addr())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
