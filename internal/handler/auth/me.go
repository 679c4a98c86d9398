// File: internal/handler/auth/me.go
package auth

import (
	"errors"
	"net/http"

	"polly-relay/internal/database"
	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/middleware"
	"polly-relay/internal/store"

	"github.com/labstack/echo/v4"
)

// MeHandler 取得目前登入的使用者
// @Summary     取得當前使用者
// @Tags        auth
// @Produce     json
// @Success     200 {object} dto.UserResponse
// @Failure     401 {object} dto.HTTPError
// @Failure     404 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    BearerAuth
// @Router      /api/auth/me [get]
func MeHandler(db database.DB, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.ClaimsFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Error: "invalid or missing token"})
		}

		user, err := store.GetUserByID(c.Request().Context(), db, claims.ID)
		if errors.Is(err, store.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Error: store.ErrUserNotFound.Error()})
		}
		if err != nil {
			return internalError(c, log, "get user by id", err)
		}
		return c.JSON(http.StatusOK, dto.NewUserResponse(user))
	}
}
