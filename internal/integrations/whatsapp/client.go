package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config параметры шлюза Evolution API
type Config struct {
	BaseURL     string
	APIKey      string
	Instance    string
	CountryCode string
	Timeout     time.Duration
}

// Client клиент WhatsApp шлюза
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента шлюза
func NewClient(cfg Config, log Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

func (c *Client) configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != "" && c.cfg.Instance != ""
}

// Send отправляет текст уведомления на телефон получателя
func (c *Client) Send(ctx context.Context, n *domain.Notification) error {
	if !c.configured() {
		return ErrNotConfigured
	}
	if n.RecipientPhone == nil {
		return ErrNoRecipient
	}
	number := NormalizePhone(*n.RecipientPhone, c.cfg.CountryCode)
	if number == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(SendTextRequest{Number: number, Text: n.Message})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Info("WhatsApp message sent: notification=%s", n.ID)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var gatewayErr ErrorResponse
	if json.Unmarshal(raw, &gatewayErr) == nil && gatewayErr.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, gatewayErr.Message)
	}
	return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
}

// NormalizePhone оставляет только цифры и гарантирует код страны.
// Ведущий 0 (междугородний префикс) заменяется кодом страны.
func NormalizePhone(phone, countryCode string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}

	switch {
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case !strings.HasPrefix(digits, countryCode):
		return countryCode + digits
	default:
		return digits
	}
}
