package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"polly-relay/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"
)

type fakeSend struct {
	msg  *mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSend) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.msg = m
	return f.resp, f.err
}

func restoreSend() {
	newSendClient = func(key string) sendClient { return sendgrid.NewSendClient(key) }
}

func TestNewWithoutKey(t *testing.T) {
	n := New(config.SendGridConfig{From: "no-reply@x.com"})
	require.IsType(t, Nop{}, n)
	require.NoError(t, n.PasswordChanged(context.Background(), "Ann", "a@x.com"))
}

func TestNewWithKey(t *testing.T) {
	t.Cleanup(restoreSend)
	var gotKey string
	newSendClient = func(key string) sendClient { gotKey = key; return &fakeSend{} }

	n := New(config.SendGridConfig{APIKey: "SG.key", From: "no-reply@x.com"})
	sg, ok := n.(*SendGrid)
	require.True(t, ok)
	require.Equal(t, "SG.key", gotKey)
	require.Equal(t, "no-reply@x.com", sg.from.Address)
}

func TestPasswordChanged(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		fake := &fakeSend{resp: &rest.Response{StatusCode: http.StatusAccepted}}
		s := &SendGrid{client: fake, from: mail.NewEmail("Polly Relay", "no-reply@x.com")}

		require.NoError(t, s.PasswordChanged(context.Background(), "Ann", "a@x.com"))
		require.NotNil(t, fake.msg)
		require.Equal(t, "Your password was changed", fake.msg.Subject)
		require.Equal(t, "no-reply@x.com", fake.msg.From.Address)
		require.Equal(t, "a@x.com", fake.msg.Personalizations[0].To[0].Address)
		require.Contains(t, fake.msg.Content[0].Value, "a@x.com")
	})

	t.Run("html escapes user input", func(t *testing.T) {
		fake := &fakeSend{resp: &rest.Response{StatusCode: http.StatusAccepted}}
		s := &SendGrid{client: fake, from: mail.NewEmail("Polly Relay", "no-reply@x.com")}

		name := `<a href="https://evil.example">click</a>`
		require.NoError(t, s.PasswordChanged(context.Background(), name, "a@x.com"))

		var body string
		for _, c := range fake.msg.Content {
			if c.Type == "text/html" {
				body = c.Value
			}
		}
		require.NotEmpty(t, body)
		require.NotContains(t, body, "<a ")
		require.Contains(t, body, "&lt;a href=&#34;https://evil.example&#34;&gt;click&lt;/a&gt;")
	})

	t.Run("transport error", func(t *testing.T) {
		s := &SendGrid{client: &fakeSend{err: errors.New("dial")}, from: mail.NewEmail("", "f@x.com")}
		require.ErrorContains(t, s.PasswordChanged(context.Background(), "Ann", "a@x.com"), "dial")
	})

	t.Run("rejected", func(t *testing.T) {
		fake := &fakeSend{resp: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}
		s := &SendGrid{client: fake, from: mail.NewEmail("", "f@x.com")}
		err := s.PasswordChanged(context.Background(), "Ann", "a@x.com")
		require.ErrorContains(t, err, "401")
		require.ErrorContains(t, err, "bad key")
	})
}
