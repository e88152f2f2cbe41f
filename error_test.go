package gocontent

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_Is(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		expectAuth bool
	}{
		{name: "should match auth error for 401", status: http.StatusUnauthorized, expectAuth: true},
		{name: "should match auth error for 403", status: http.StatusForbidden, expectAuth: true},
		{name: "should match transport error for 500", status: http.StatusInternalServerError},
		{name: "should match transport error for 429", status: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &StatusError{Backend: "discord", StatusCode: tt.status})

			assert.Equal(t, tt.expectAuth, errors.Is(err, ErrAuth))
			assert.Equal(t, !tt.expectAuth, errors.Is(err, ErrTransport))
			assert.False(t, errors.Is(err, ErrNotFound), "expected status error never to mean not found")

			var statusErr *StatusError
			assert.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
		})
	}
}

func TestCredential_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cred      Credential
		expectErr bool
	}{
		{name: "should accept empty local root", cred: LocalRoot{}},
		{name: "should accept complete bot token", cred: BotToken{Token: "t", ChannelID: "c"}},
		{name: "should reject bot token without channel", cred: BotToken{Token: "t"}, expectErr: true},
		{name: "should reject bot token without token", cred: BotToken{ChannelID: "c"}, expectErr: true},
		{name: "should reject empty webhook", cred: WebhookURL{}, expectErr: true},
		{name: "should reject drive session without client", cred: DriveSession{}, expectErr: true},
		{name: "should accept drive session with client", cred: DriveSession{Client: http.DefaultClient}},
		{name: "should reject empty service account path", cred: ServiceAccountFile{}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
