package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/odysseus0/aidigest/internal/config"
)

const (
	StartMessage      = "Starting AI News Digest..."
	maxErrorBodyBytes = 1024
)

type Telegram struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
	limiter *rate.Limiter
}

func NewTelegram(cfg config.Config, creds config.Credentials, client *http.Client) *Telegram {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Telegram{
		client:  client,
		baseURL: strings.TrimRight(cfg.TelegramAPIBase, "/"),
		token:   creds.TelegramBotToken,
		chatID:  creds.TelegramChatID,
		limiter: rate.NewLimiter(rate.Limit(cfg.ChatRatePerSecond), 1),
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts messages in order and stops at the first failure. It returns
// how many messages were accepted.
func (t *Telegram) Send(ctx context.Context, messages []string) (int, error) {
	for i, text := range messages {
		if err := t.limiter.Wait(ctx); err != nil {
			return i, err
		}
		if err := t.sendMessage(ctx, text); err != nil {
			return i, fmt.Errorf("message %d/%d: %w", i+1, len(messages), err)
		}
	}
	return len(messages), nil
}

func (t *Telegram) Announce(ctx context.Context) error {
	_, err := t.Send(ctx, []string{StartMessage})
	return err
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}

	endpoint := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return t.redact(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return t.redact(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram sendMessage: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && !parsed.OK {
		return fmt.Errorf("telegram sendMessage: %s", fallback(parsed.Description, strings.TrimSpace(string(body))))
	}
	return nil
}

// redact keeps the bot token out of transport errors, which embed the URL.
func (t *Telegram) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && t.token != "" {
		ue.URL = strings.ReplaceAll(ue.URL, t.token, "<redacted>")
	}
	if t.token != "" && strings.Contains(err.Error(), t.token) {
		return errors.New(strings.ReplaceAll(err.Error(), t.token, "<redacted>"))
	}
	return err
}

func fallback(v, fb string) string {
	if strings.TrimSpace(v) == "" {
		return fb
	}
	return v
}
