// File: internal/handler/auth/login.go
package auth

import (
	"errors"
	"net/http"

	"polly-relay/internal/api"
	"polly-relay/internal/database"
	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/service"
	"polly-relay/internal/store"

	"github.com/labstack/echo/v4"
)

// LoginHandler 使用 Email/Password 驗證並回傳 JWT
// @Summary     登入使用者
// @Description 驗證 email 與密碼，回傳存取令牌、到期時間與使用者資料
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.LoginRequest true "登入資料"
// @Success     200  {object} dto.LoginResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /api/auth/login [post]
func LoginHandler(db database.DB, tokens *service.TokenIssuer, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}

		// 撈使用者資料
		user, err := store.GetUserByEmail(c.Request().Context(), db, req.Email)
		if errors.Is(err, store.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Error: store.ErrUserNotFound.Error()})
		}
		if err != nil {
			return internalError(c, log, "get user by email", err)
		}

		// 驗證密碼
		if err := authenticateUser(user, req.Password); err != nil {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Error: service.ErrInvalidCredentials.Error()})
		}

		// 發行存取令牌
		token, expiresAt, err := tokens.Issue(user)
		if err != nil {
			return internalError(c, log, "issue token", err)
		}

		return c.JSON(http.StatusOK, dto.LoginResponse{
			Message:   "Login successful",
			Token:     token,
			ExpiresAt: expiresAt,
			User:      dto.NewUserResponse(user),
		})
	}
}
