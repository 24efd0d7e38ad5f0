package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingCredential = errors.New("missing credential")

const (
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvSenderEmail      = "SENDER_EMAIL"
	EnvAppPassword      = "APP_PASSWORD"
	EnvRecipientEmail   = "RECIPIENT_EMAIL"
	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
)

// Credentials are read from the process environment once at startup and
// handed to the collaborators that need them.
type Credentials struct {
	LLMAPIKey        string
	SenderEmail      string
	AppPassword      string
	RecipientEmail   string
	TelegramBotToken string
	TelegramChatID   string
}

type CredentialOptions struct {
	Provider string
	// Email and Chat say which delivery channels will be used; a dry run
	// needs neither.
	Email bool
	Chat  bool
}

// LoadCredentials reports every missing variable at once.
func LoadCredentials(opts CredentialOptions) (Credentials, error) {
	var missing []string
	get := func(key string, required bool) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" && required {
			missing = append(missing, key)
		}
		return v
	}

	llmKey := EnvOpenAIAPIKey
	if opts.Provider == ProviderAnthropic {
		llmKey = EnvAnthropicAPIKey
	}

	creds := Credentials{
		LLMAPIKey:        get(llmKey, true),
		SenderEmail:      get(EnvSenderEmail, opts.Email),
		AppPassword:      get(EnvAppPassword, opts.Email),
		RecipientEmail:   get(EnvRecipientEmail, opts.Email),
		TelegramBotToken: get(EnvTelegramBotToken, opts.Chat),
		TelegramChatID:   get(EnvTelegramChatID, opts.Chat),
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: set %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return creds, nil
}
