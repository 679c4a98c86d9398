// File: internal/handler/auth/change_password.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"polly-relay/internal/api"
	"polly-relay/internal/database"
	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/notify"
	"polly-relay/internal/service"
	"polly-relay/internal/store"
	"polly-relay/internal/worker"

	"github.com/labstack/echo/v4"
)

// ChangePasswordHandler 驗證舊密碼後更新為新密碼
// @Summary     變更密碼
// @Description 以 email 與舊密碼驗證身分，成功後寫入新密碼並寄送通知信。
// @Description 錯誤回應統一為 {"error": "..."}，不再使用 {"message": "..."}
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       body body     api.ChangePasswordRequest true "變更密碼資料"
// @Success     200  {object} dto.MessageResponse
// @Failure     400  {object} dto.HTTPError
// @Failure     401  {object} dto.HTTPError
// @Failure     404  {object} dto.HTTPError
// @Failure     500  {object} dto.HTTPError
// @Router      /api/auth/change-password [post]
func ChangePasswordHandler(db database.DB, notifier notify.Notifier, workers worker.Pool, log logging.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.ChangePasswordRequest
		if ok, err := bindAndValidate(c, &req); !ok {
			return err
		}
		// 新密碼過長時不查詢也不驗證舊密碼
		if ok, err := checkPasswordLength(c, req.NewPassword); !ok {
			return err
		}
		ctx := c.Request().Context()

		user, err := store.GetUserByEmail(ctx, db, req.Email)
		if errors.Is(err, store.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Error: store.ErrUserNotFound.Error()})
		}
		if err != nil {
			return internalError(c, log, "get user by email", err)
		}

		// 舊密碼不符時不做任何寫入
		if err := authenticateUser(user, req.OldPassword); err != nil {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Error: service.ErrInvalidCredentials.Error()})
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return internalError(c, log, "hash password", err)
		}

		err = store.UpdateUserPassword(ctx, db, user.ID, hash)
		if errors.Is(err, store.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, dto.HTTPError{Error: store.ErrUserNotFound.Error()})
		}
		if err != nil {
			return internalError(c, log, "update password", err)
		}

		name, email := user.Name, user.Email
		workers.Submit("password-changed-email", func(ctx context.Context) {
			if err := notifier.PasswordChanged(ctx, name, email); err != nil {
				log.Warn(ctx, "password changed notification failed", "user_id", user.ID, "error", err)
			}
		})

		log.Info(ctx, "password updated", "user_id", user.ID)
		return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated!"})
	}
}
