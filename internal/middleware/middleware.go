// File: internal/middleware/middleware.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	"polly-relay/internal/dto"
	"polly-relay/internal/logging"
	"polly-relay/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const ContextUserKey = "user"

// RequireAuth 驗證 Authorization: Bearer <token>，成功後 token 存於 ContextUserKey
func RequireAuth(tokens *service.TokenIssuer) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    tokens.Secret(),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    ContextUserKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(service.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, dto.HTTPError{Error: "invalid or missing token"})
		},
	})
}

// ClaimsFromContext 取出 RequireAuth 放入的 claims
func ClaimsFromContext(c echo.Context) (*service.Claims, bool) {
	token, ok := c.Get(ContextUserKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*service.Claims)
	return claims, ok
}

// CORS 只允許設定中的前端來源
func CORS(origins []string) echo.MiddlewareFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	})
}

func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger 每個請求寫一行結構化 access log
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Round(time.Microsecond).Seconds() * 1000,
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				log.Error(ctx, "request", append(args, "error", v.Error.Error())...)
				return nil
			}
			log.Info(ctx, "request", args...)
			return nil
		},
	})
}
