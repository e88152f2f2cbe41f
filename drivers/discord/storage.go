package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"
)

const (
	backendName = "discord"

	DefaultBaseURL       = "https://discord.com/api/v10"
	DefaultHistoryWindow = 100
	DefaultTimeout       = 30 * time.Second

	// maxPageSize is the largest limit the messages endpoint accepts.
	maxPageSize = 100

	userAgent     = "DiscordBot (https://github.com/shoraid/go-content, 1.0)"
	maxErrorBody  = 4096
	fileFieldName = "file"
)

// Config defines how to reach a Discord channel.
// Credentials must hold a gocontent.BotToken, a gocontent.WebhookURL, or both.
type Config struct {
	Credentials   []gocontent.Credential
	HistoryWindow int           // most recent messages scanned per lookup, DefaultHistoryWindow when 0
	BaseURL       string        // API root, DefaultBaseURL when empty
	Timeout       time.Duration // per request, DefaultTimeout when 0
	HTTPClient    *http.Client  // optional, overrides Timeout
}

// ChannelStorage is the gocontent.Strategy for a Discord channel.
//
// Files saved through the bot are searchable by Load within the history window.
// Files saved through the webhook are not visible to the bot's lookups.
type ChannelStorage struct {
	client  *http.Client
	baseURL string
	window  int

	bot     *gocontent.BotToken
	webhook *gocontent.WebhookURL
}

type message struct {
	ID          string       `json:"id"`
	Attachments []attachment `json:"attachments"`
}

type attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// New validates the credentials and returns a ChannelStorage.
// Returns gocontent.ErrConfig when neither a bot token nor a webhook is supplied.
func New(cfg Config) (*ChannelStorage, error) {
	s := &ChannelStorage{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		window:  cfg.HistoryWindow,
	}

	for _, cred := range cfg.Credentials {
		if cred == nil {
			continue
		}
		if err := cred.Validate(); err != nil {
			return nil, err
		}

		switch c := cred.(type) {
		case gocontent.BotToken:
			s.bot = &c
		case gocontent.WebhookURL:
			s.webhook = &c
		default:
			return nil, fmt.Errorf("%w: discord cannot use %T", gocontent.ErrConfig, cred)
		}
	}

	if s.bot == nil && s.webhook == nil {
		return nil, fmt.Errorf("%w: discord requires a webhook url or a bot token with channel id", gocontent.ErrConfig)
	}

	if s.window <= 0 {
		s.window = DefaultHistoryWindow
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.client = &http.Client{Timeout: timeout}
	}

	return s, nil
}

// Capabilities depends on the credentials: lookups need the bot.
func (s *ChannelStorage) Capabilities() gocontent.Capabilities {
	caps := gocontent.Capabilities{Webhook: s.webhook != nil}
	if s.bot != nil {
		caps.Searchable = true
		caps.LoadByName = true
		caps.Download = true
		caps.RecencyIndex = true
		caps.HistoryWindow = s.window
	}
	return caps
}

// Save uploads content through the bot so it can be found again.
// Returns gocontent.ErrAuth when no bot token is configured; use SaveWebhook for webhook uploads.
func (s *ChannelStorage) Save(ctx context.Context, content string, name string) error {
	if name == "" {
		return gocontent.ErrInvalidName
	}

	if s.bot == nil {
		return fmt.Errorf("%w: discord save requires a bot token and channel id", gocontent.ErrAuth)
	}

	err := s.upload(ctx, s.messagesURL(), s.bot.Token, content, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to upload file to discord channel")
	}
	return err
}

// SaveWebhook uploads content to the webhook URL.
func (s *ChannelStorage) SaveWebhook(ctx context.Context, content string, name string) error {
	if err := s.Capabilities().Check(gocontent.OpWebhook); err != nil {
		return err
	}
	if name == "" {
		return gocontent.ErrInvalidName
	}

	err := s.upload(ctx, s.webhook.URL, "", content, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to upload file to discord webhook")
	}
	return err
}

// Load returns the newest attachment called name within the history window.
func (s *ChannelStorage) Load(ctx context.Context, name string) (string, error) {
	if err := s.Capabilities().Check(gocontent.OpLoad); err != nil {
		return "", err
	}

	record, err := s.resolve(ctx, name)
	if err != nil {
		return "", err
	}

	data, err := s.fetchAttachment(ctx, record)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Download writes the newest attachment called name to destination.
func (s *ChannelStorage) Download(ctx context.Context, name string, destination string) error {
	if err := s.Capabilities().Check(gocontent.OpDownload); err != nil {
		return err
	}

	record, err := s.resolve(ctx, name)
	if err != nil {
		return err
	}

	data, err := s.fetchAttachment(ctx, record)
	if err != nil {
		return err
	}
	return gocontent.WriteDestination(destination, bytes.NewReader(data))
}

// LoadByRecencyIndex returns the n-th most recent attachment in the window, 0 being the newest.
// Attachments of one message are counted in the order the platform lists them.
func (s *ChannelStorage) LoadByRecencyIndex(ctx context.Context, n int) (string, error) {
	if err := s.Capabilities().Check(gocontent.OpRecency); err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("%w: negative index %d", gocontent.ErrNotFound, n)
	}

	messages, err := s.recentMessages(ctx)
	if err != nil {
		return "", err
	}

	position := 0
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			if position == n {
				data, err := s.fetchAttachment(ctx, gocontent.RemoteFileRecord{
					ID:       att.ID,
					Name:     att.Filename,
					URL:      att.URL,
					Position: position,
				})
				if err != nil {
					return "", err
				}
				return string(data), nil
			}
			position++
		}
	}

	return "", fmt.Errorf("%w: no file at index %d in the last %d messages", gocontent.ErrNotFound, n, s.window)
}

// LoadLatest returns the newest attachment in the channel.
func (s *ChannelStorage) LoadLatest(ctx context.Context) (string, error) {
	return s.LoadByRecencyIndex(ctx, 0)
}

// resolve scans the window newest first and returns the first attachment named name.
func (s *ChannelStorage) resolve(ctx context.Context, name string) (gocontent.RemoteFileRecord, error) {
	if name == "" {
		return gocontent.RemoteFileRecord{}, gocontent.ErrInvalidName
	}

	messages, err := s.recentMessages(ctx)
	if err != nil {
		return gocontent.RemoteFileRecord{}, err
	}

	position := 0
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			if att.Filename == name {
				return gocontent.RemoteFileRecord{
					ID:       att.ID,
					Name:     att.Filename,
					URL:      att.URL,
					Position: position,
				}, nil
			}
			position++
		}
	}

	return gocontent.RemoteFileRecord{}, fmt.Errorf("%w: %q in the last %d messages", gocontent.ErrNotFound, name, s.window)
}

// recentMessages pages backwards from the newest message and never returns
// more than the history window.
func (s *ChannelStorage) recentMessages(ctx context.Context) ([]message, error) {
	messages := make([]message, 0, s.window)
	before := ""

	for len(messages) < s.window {
		limit := min(s.window-len(messages), maxPageSize)

		page, err := s.fetchPage(ctx, limit, before)
		if err != nil {
			return nil, err
		}
		if len(page) > limit {
			page = page[:limit]
		}

		messages = append(messages, page...)
		if len(page) < limit {
			break
		}
		before = page[len(page)-1].ID
	}

	log.Debug().Int("messages", len(messages)).Int("window", s.window).Msg("scanned discord history")
	return messages, nil
}

func (s *ChannelStorage) fetchPage(ctx context.Context, limit int, before string) ([]message, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if before != "" {
		q.Set("before", before)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.messagesURL()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", gocontent.ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bot "+s.bot.Token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.do(req)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch discord messages")
		return nil, err
	}
	defer resp.Body.Close()

	var page []message
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode messages: %v", gocontent.ErrTransport, err)
	}
	return page, nil
}

func (s *ChannelStorage) fetchAttachment(ctx context.Context, record gocontent.RemoteFileRecord) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, record.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", gocontent.ErrTransport, err)
	}

	resp, err := s.do(req)
	if err != nil {
		log.Error().Err(err).Str("name", record.Name).Int("position", record.Position).Msg("failed to download discord attachment")
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read attachment: %v", gocontent.ErrTransport, err)
	}
	return data, nil
}

// upload posts content as a multipart file. An empty token sends no Authorization header.
func (s *ChannelStorage) upload(ctx context.Context, target, token, content, name string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fileFieldName, name)
	if err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: build multipart body: %v", gocontent.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", gocontent.ErrTransport, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bot "+token)
	}

	resp, err := s.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do sends req and turns transport failures and non-2xx statuses into gocontent errors.
// On success the caller owns resp.Body.
func (s *ChannelStorage) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gocontent.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &gocontent.StatusError{
			Backend:    backendName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	return resp, nil
}

func (s *ChannelStorage) messagesURL() string {
	return fmt.Sprintf("%s/channels/%s/messages", s.baseURL, url.PathEscape(s.bot.ChannelID))
}
