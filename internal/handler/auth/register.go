// File: internal/handler/auth/register.go
package auth

import (
	"errors"
	"net/http"

	"polly-relay/internal/api"
	"polly-relay/internal/database"
	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/model"
	"polly-relay/internal/store"

	"github.com/labstack/echo/v4"
)

// RegisterHandler 建立新帳號
// @Summary     註冊使用者
// @Description 以 name/email/password 建立帳號，email 重複時回傳 409。
// @Description email 先去除空白並轉小寫，password 最多 72 bytes
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.RegisterRequest true "註冊資料"
// @Success     201  {object} dto.RegisterResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     409  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /api/auth/register [post]
func RegisterHandler(db database.DB, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}
		if ok, err := checkPasswordLength(c, req.Password); !ok {
			return err
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return internalError(c, log, "hash password", err)
		}

		// 重複 email 交給 UNIQUE 約束判斷
		user, err := store.CreateUser(c.Request().Context(), db, &model.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
		})
		if errors.Is(err, store.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, dto.HTTPError{Error: store.ErrEmailTaken.Error()})
		}
		if err != nil {
			return internalError(c, log, "create user", err)
		}

		log.Info(c.Request().Context(), "user registered", "user_id", user.ID)
		return c.JSON(http.StatusCreated, dto.RegisterResponse{
			Message: "Registered successfully",
			User:    dto.NewUserResponse(user),
		})
	}
}
