// File: internal/handler/ping.go
package handler

import (
	"net/http"
	"time"

	"polly-relay/internal/cache"
	"polly-relay/internal/database"
	"polly-relay/internal/dto"

	"github.com/labstack/echo/v4"
)

const pingKey = "health:ping"

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與（有設定時）Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} dto.MessageResponse
// @Failure     500 {object} dto.HTTPError
// @Router      /api/ping [get]
func PingHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		if err := db.Ping(reqCtx); err != nil {
			return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Error: "database unhealthy"})
		}
		// 未設定 Redis 時略過
		if c != nil {
			if err := c.Set(reqCtx, pingKey, time.Now().Unix(), time.Minute).Err(); err != nil {
				return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Error: "cache unhealthy"})
			}
		}
		return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "pong"})
	}
}
