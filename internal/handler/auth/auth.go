// File: internal/handler/auth/auth.go
package auth

import (
	"net/http"

	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/service"

	"github.com/labstack/echo/v4"
)

const internalErrorMessage = "internal server error"

var (
	hashPassword     = service.HashPassword
	authenticateUser = service.AuthenticateUser
)

type normalizer interface {
	Normalize()
}

// bindAndValidate 先 Bind、整理欄位再驗證結構化參數 (go-playground/validator)，
// 失敗時已寫出 400，ok 為 false
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.HTTPError{Error: "invalid request body"})
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.HTTPError{Error: err.Error()})
	}
	return true, nil
}

// checkPasswordLength bcrypt 只接受 72 bytes 以內，超過時已寫出 400
func checkPasswordLength(c echo.Context, password string) (bool, error) {
	if err := service.CheckPasswordLength(password); err != nil {
		return false, c.JSON(http.StatusBadRequest, dto.HTTPError{Error: err.Error()})
	}
	return true, nil
}

// internalError 記錄完整錯誤，回應只帶通用訊息
func internalError(c echo.Context, log logging.Logger, msg string, err error) error {
	log.Error(c.Request().Context(), msg,
		"error", err,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
	)
	return c.JSON(http.StatusInternalServerError, dto.HTTPError{Error: internalErrorMessage})
}
