// File: internal/notify/notify.go
package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"

	"polly-relay/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier 寄送帳號相關通知
type Notifier interface {
	PasswordChanged(ctx context.Context, name, email string) error
}

// Nop 未設定 SENDGRID_API_KEY 時使用
type Nop struct{}

func (Nop) PasswordChanged(context.Context, string, string) error { return nil }

// sendClient 只取用 *sendgrid.Client 的 SendWithContext
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

var newSendClient = func(key string) sendClient {
	return sendgrid.NewSendClient(key)
}

type SendGrid struct {
	client sendClient
	from   *mail.Email
}

// New 依設定回傳 SendGrid notifier，沒有 API key 時回傳 Nop
func New(cfg config.SendGridConfig) Notifier {
	if cfg.APIKey == "" {
		return Nop{}
	}
	return &SendGrid{
		client: newSendClient(cfg.APIKey),
		from:   mail.NewEmail("Polly Relay", cfg.From),
	}
}

func (s *SendGrid) PasswordChanged(ctx context.Context, name, email string) error {
	to := mail.NewEmail(name, email)
	subject := "Your password was changed"
	plain := fmt.Sprintf("Hi %s, the password for %s was just changed. If this wasn't you, reset it right away.", name, email)
	// name 由使用者填寫，放進 HTML 前先跳脫
	body := fmt.Sprintf("<p>Hi %s,</p><p>The password for <strong>%s</strong> was just changed.</p><p>If this wasn't you, reset it right away.</p>",
		html.EscapeString(name), html.EscapeString(email))

	msg := mail.NewSingleEmail(s.from, subject, to, plain, body)
	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("PasswordChanged: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("PasswordChanged: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
