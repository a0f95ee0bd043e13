package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendApplicationConfirmation(toEmail, toName, companyName, position string) error
	SendPasswordReset(toEmail, toName, password string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// Configured reports whether credentials were supplied
func (c SMTPConfig) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(toEmail, subject, htmlBody string) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{
		config: config,
		logger: logger,
	}
	s.send = s.sendHTMLEmail
	return s
}

var applicationTemplate = template.Must(template.New("application").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Application received</h2>
		<p>Hello {{.Name}},</p>
		<p>Your application for <strong>{{.Position}}</strong> at <strong>{{.Company}}</strong> has been recorded.</p>
		<p>The placement cell will contact you about the next steps.</p>
		<p>Best regards,<br>Training &amp; Placement Cell</p>
	</div>
</body>
</html>
`))

var passwordTemplate = template.Must(template.New("password").Parse(`
<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello {{.Name}},</p>
		<p>Your student portal password has been reset. Your new password is <strong>{{.Password}}</strong>.</p>
		<p>Best regards,<br>Training &amp; Placement Cell</p>
	</div>
</body>
</html>
`))

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendApplicationConfirmation tells a student their application was recorded
func (s *EmailServiceImpl) SendApplicationConfirmation(toEmail, toName, companyName, position string) error {
	if !s.config.Configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("company", companyName).
			Msg("SMTP credentials not configured - application confirmation not sent")
		return nil
	}

	body, err := render(applicationTemplate, map[string]string{
		"Name": toName, "Company": companyName, "Position": position,
	})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	return s.send(toEmail, fmt.Sprintf("Application received - %s", companyName), body)
}

// SendPasswordReset mails a regenerated password
func (s *EmailServiceImpl) SendPasswordReset(toEmail, toName, password string) error {
	if !s.config.Configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SMTP credentials not configured - password reset email not sent")
		return nil
	}

	body, err := render(passwordTemplate, map[string]string{"Name": toName, "Password": password})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	return s.send(toEmail, "Student portal password reset", body)
}

func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	return msg.Bytes()
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := s.buildMessage(toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
