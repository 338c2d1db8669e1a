// AngelaMos | 2026
// mailer_test.go

package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/config"
)

func TestNewPicksLogSenderWithoutHost(t *testing.T) {
	s := New(config.SMTPConfig{}, nil)
	_, ok := s.(*LogSender)
	assert.True(t, ok)

	s = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, nil)
	_, ok = s.(*SMTPSender)
	assert.True(t, ok)
}

func TestLogSenderDoesNotLeakBody(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := NewLogSender(logger).Send(context.Background(), Message{
		To:       "a@example.com",
		Subject:  "Reset your password",
		TextBody: "secret-token",
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "a@example.com")
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestBuildMessage(t *testing.T) {
	m := buildMessage("Avocado <no-reply@avocado.local>", Message{
		To:       "b@example.com",
		Subject:  "Hi",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})

	var out bytes.Buffer
	_, err := m.WriteTo(&out)
	require.NoError(t, err)

	raw := out.String()
	assert.Contains(t, raw, "To: b@example.com")
	assert.True(t, strings.Contains(raw, "text/html"))
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 1}).Send(ctx, Message{To: "x@y.z"})
	assert.ErrorIs(t, err, context.Canceled)
}
