// Package email provides transactional email dispatch. Events are published
// to Kafka and delivered by the email worker, or sent synchronously when
// Kafka is not configured. Sending supports log-only (development) and SMTP
// (production) modes.
package email

import (
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"os"
	"strconv"

	"shuddhudara/internal/config"
)

// Sender delivers a single email event.
type Sender interface {
	Send(event Event) error
}

// Config holds sender configuration.
type Config struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// NewConfig reads sender configuration from environment variables.
func NewConfig() *Config {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Mode:     config.GetEnvOrDefault("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     config.GetEnvOrDefault("SMTP_FROM", "team@shuddhudara.org"),
		FromName: config.GetEnvOrDefault("SMTP_FROM_NAME", "Shuddhudara Team"),
	}
}

// NewSender creates a sender for the configured mode.
func NewSender(cfg *Config) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{config: cfg}
	}
	return &logSender{}
}

// logSender logs emails instead of sending them (development mode).
type logSender struct{}

func (s *logSender) Send(event Event) error {
	slog.Info("[DEV] email",
		"type", event.EventType,
		"recipient", event.Recipient,
		"data", event.Data)
	return nil
}

// smtpSender sends emails via SMTP.
type smtpSender struct {
	config *Config
}

func (s *smtpSender) Send(event Event) error {
	subject, body, err := render(event)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From)
	message += fmt.Sprintf("To: %s\r\n", event.Recipient)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{event.Recipient}, []byte(message)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func render(event Event) (subject, body string, err error) {
	switch event.EventType {
	case TypeWelcome:
		name, _ := event.Data["name"].(string)
		if name == "" {
			name = "Friend"
		}
		return "Welcome to the Movement!", welcomeBody(name), nil

	case TypePasswordReset:
		code, ok := event.Data["code"].(string)
		if !ok {
			return "", "", fmt.Errorf("password reset event missing code")
		}
		return "Your Password Reset Code", resetBody(code), nil

	default:
		return "", "", fmt.Errorf("unsupported email type: %s", event.EventType)
	}
}

func welcomeBody(name string) string {
	// The name is subscriber-supplied and lands in an HTML body.
	name = html.EscapeString(name)
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; color: #111827; max-width: 600px; margin: 0 auto;">
    <h1 style="color: #10b981;">Welcome to Shuddhudara, %s!</h1>
    <p>Thank you for joining the Clean Air Revolution. You've taken the first step towards a healthier, more sustainable future.</p>
    <div style="background-color: #f0fdf4; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <h3 style="margin-top: 0; color: #059669;">What happens next?</h3>
        <ul style="padding-left: 20px;">
            <li>Weekly insights on air quality.</li>
            <li>Early access to new BioBloom updates.</li>
            <li>Real-time impact reports from our community.</li>
        </ul>
    </div>
    <p>We're thrilled to have you with us.</p>
    <p><strong>The Shuddhudara Team</strong></p>
</div>`, name)
}

func resetBody(code string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; color: #111827; max-width: 600px; margin: 0 auto;">
    <h1 style="color: #10b981;">Password Reset</h1>
    <p>Your reset code is:</p>
    <div style="background: white; border: 2px solid #10b981; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0;">
        <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #10b981;">%s</span>
    </div>
    <p style="font-size: 14px; color: #666;">This code will expire in <strong>10 minutes</strong>.</p>
    <p style="font-size: 14px; color: #666;">If you didn't request a reset, you can safely ignore this email.</p>
</div>`, code)
}
