package email

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnconfiguredServiceOnlyLogs(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Host: "smtp.invalid", Port: 25}, zerolog.Nop()).(*EmailServiceImpl)
	called := false
	svc.send = func(string, string, string) error { called = true; return nil }

	require.NoError(t, svc.SendApplicationConfirmation("a@b.c", "Asha", "Acme", "SDE"))
	assert.False(t, called)
}

func TestApplicationConfirmationEscapesFields(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Username: "u", Password: "p"}, zerolog.Nop()).(*EmailServiceImpl)

	var subject, body string
	svc.send = func(_, s, b string) error { subject, body = s, b; return nil }

	require.NoError(t, svc.SendApplicationConfirmation("a@b.c", "Asha", "<Acme>", "SDE"))
	assert.Equal(t, "Application received - <Acme>", subject)
	assert.Contains(t, body, "&lt;Acme&gt;")
	assert.Contains(t, body, "Hello Asha")
}

func TestBuildMessageHeaders(t *testing.T) {
	svc := &EmailServiceImpl{config: SMTPConfig{FromName: "TPO", FromEmail: "tpo@college.edu"}}
	msg := string(svc.buildMessage("s@college.edu", "Hi", "<p>x</p>"))

	assert.Contains(t, msg, "From: TPO <tpo@college.edu>\r\n")
	assert.Contains(t, msg, "To: s@college.edu\r\n")
	assert.Contains(t, msg, "\r\n\r\n<p>x</p>")
}
