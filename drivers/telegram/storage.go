package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
)

const (
	backendName = "telegram"

	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4096
)

// Config defines how to reach a Telegram chat.
type Config struct {
	Credential gocontent.Credential // gocontent.BotToken, ChannelID holds the chat id
	BaseURL    string               // API root, DefaultBaseURL when empty
	Timeout    time.Duration        // per request, DefaultTimeout when 0
	HTTPClient *http.Client         // optional, overrides Timeout
}

// ChatStorage is the gocontent.Strategy for a Telegram chat.
// The Bot API cannot search chat history, so the storage is write-only.
type ChatStorage struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// New returns a ChatStorage. Both the bot token and the chat id are required.
func New(cfg Config) (*ChatStorage, error) {
	cred, ok := cfg.Credential.(gocontent.BotToken)
	if !ok {
		return nil, fmt.Errorf("%w: telegram requires a bot token and chat id", gocontent.ErrConfig)
	}
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &ChatStorage{
		client:  client,
		baseURL: baseURL,
		token:   cred.Token,
		chatID:  cred.ChannelID,
	}, nil
}

// Capabilities declares the storage write-only.
func (s *ChatStorage) Capabilities() gocontent.Capabilities {
	return gocontent.Capabilities{}
}

// Save sends content as a document to the chat.
func (s *ChatStorage) Save(ctx context.Context, content string, name string) error {
	if name == "" {
		return gocontent.ErrInvalidName
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("chat_id", s.chatID); err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}
	part, err := writer.CreateFormFile("document", name)
	if err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", gocontent.ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		// The request URL embeds the token; keep it out of logs and errors.
		log.Error().Str("name", name).Msg("failed to send document to telegram")
		return fmt.Errorf("%w: send document: %v", gocontent.ErrTransport, redact(err, s.token))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := statusError(resp)
		log.Error().Err(err).Str("name", name).Msg("telegram rejected document")
		return err
	}

	return nil
}

// Load always fails: the Bot API offers no way to find a document by name.
func (s *ChatStorage) Load(ctx context.Context, name string) (string, error) {
	return "", s.Capabilities().Check(gocontent.OpLoad)
}

// Download always fails for the same reason as Load.
func (s *ChatStorage) Download(ctx context.Context, name string, destination string) error {
	return s.Capabilities().Check(gocontent.OpDownload)
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(raw))
	var envelope apiResponse
	if json.Unmarshal(raw, &envelope) == nil && envelope.Description != "" {
		msg = envelope.Description
	}

	return &gocontent.StatusError{
		Backend:    backendName,
		StatusCode: resp.StatusCode,
		Body:       msg,
	}
}

func redact(err error, token string) string {
	return strings.ReplaceAll(err.Error(), token, "<token>")
}
