package gocontent

import (
	"fmt"
	"net/http"
)

// Credential is the authenticated handle a storage is built from.
// The set of variants is closed: LocalRoot, DriveSession, ServiceAccountFile,
// BotToken and WebhookURL.
type Credential interface {
	// Validate reports a missing field as ErrConfig.
	Validate() error

	credential()
}

// LocalRoot points a local storage at a directory. An empty Path means the working directory.
type LocalRoot struct {
	Path string
}

// DriveSession is an already authenticated HTTP client for the Drive API,
// typically produced by an oauth2 token source.
type DriveSession struct {
	Client *http.Client
}

// ServiceAccountFile is the path of a service-account JSON key.
type ServiceAccountFile struct {
	Path string
}

// BotToken authenticates a chat bot. ChannelID is the channel or chat the bot writes to.
type BotToken struct {
	Token     string
	ChannelID string
}

// WebhookURL is a pre-shared URL that accepts uploads without further authentication.
type WebhookURL struct {
	URL string
}

func (LocalRoot) credential()          {}
func (DriveSession) credential()       {}
func (ServiceAccountFile) credential() {}
func (BotToken) credential()           {}
func (WebhookURL) credential()         {}

func (c LocalRoot) Validate() error { return nil }

func (c DriveSession) Validate() error {
	if c.Client == nil {
		return fmt.Errorf("%w: drive session requires an http client", ErrConfig)
	}
	return nil
}

func (c ServiceAccountFile) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: service account file path is empty", ErrConfig)
	}
	return nil
}

func (c BotToken) Validate() error {
	switch {
	case c.Token == "":
		return fmt.Errorf("%w: bot token is empty", ErrConfig)
	case c.ChannelID == "":
		return fmt.Errorf("%w: bot channel id is empty", ErrConfig)
	}
	return nil
}

func (c WebhookURL) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: webhook url is empty", ErrConfig)
	}
	return nil
}
