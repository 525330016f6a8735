package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const defaultSubject = "Уведомление о записи"

// Dialer отправка готовых писем, *gomail.Dialer
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры SMTP
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender отправляет уведомления по email
type Sender struct {
	from   string
	dialer Dialer
	log    Logger
}

// NewSender создает отправителя. Если сервер не задан, Send всегда возвращает ErrNotConfigured.
func NewSender(cfg Config, log Logger) *Sender {
	if cfg.Host == "" || cfg.From == "" {
		return &Sender{log: log}
	}
	return NewSenderWithDialer(cfg.From, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log)
}

// NewSenderWithDialer создает отправителя поверх произвольного Dialer
func NewSenderWithDialer(from string, dialer Dialer, log Logger) *Sender {
	return &Sender{
		from:   from,
		dialer: dialer,
		log:    log,
	}
}

// Send отправляет письмо с текстом уведомления
func (s *Sender) Send(ctx context.Context, n *domain.Notification) error {
	if s.dialer == nil {
		return ErrNotConfigured
	}
	if n.RecipientEmail == nil || strings.TrimSpace(*n.RecipientEmail) == "" {
		return ErrNoRecipient
	}
	// gomail не принимает контекст, поэтому проверяем отмену до соединения
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(s.buildMessage(n)); err != nil {
		return fmt.Errorf("%w: notification=%s: %v", ErrSend, n.ID, err)
	}

	s.log.Info("Email sent: notification=%s", n.ID)
	return nil
}

func (s *Sender) buildMessage(n *domain.Notification) *gomail.Message {
	subject := defaultSubject
	if n.Subject != nil && *n.Subject != "" {
		subject = *n.Subject
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", strings.TrimSpace(*n.RecipientEmail))
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", n.Message)
	m.AddAlternative("text/html", renderHTML(n.Message))
	return m
}

func renderHTML(message string) string {
	body := strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
	return `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">` +
		`<p style="font-size: 16px; line-height: 1.6;">` + body + `</p></div>`
}
