package clients

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/models"
)

// SMSConfig selects the SMS gateway account and recipients.
type SMSConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
	To         []string
}

// SMSClient sends alert texts through a Twilio-compatible messages API.
type SMSClient struct {
	base   *BaseClient
	cfg    SMSConfig
	logger *zap.Logger
}

// NewSMSClient returns client wrapper.
func NewSMSClient(cfg SMSConfig, client HTTPDoer, logger *zap.Logger) *SMSClient {
	return &SMSClient{
		base:   NewBaseClient(cfg.BaseURL, client),
		cfg:    cfg,
		logger: logger,
	}
}

// Name identifies the sink in logs and metrics.
func (c *SMSClient) Name() string {
	return "sms"
}

// Send texts the notification body to every configured recipient.
func (c *SMSClient) Send(ctx context.Context, n models.Notification) error {
	if !c.base.Enabled() || len(c.cfg.To) == 0 {
		c.logger.Debug("sms client disabled, skipping notification", zap.String("notification_id", n.ID))
		return nil
	}

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", url.PathEscape(c.cfg.AccountSID))
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.AccountSID + ":" + c.cfg.AuthToken))
	headers := map[string]string{
		"Content-Type":  "application/x-www-form-urlencoded",
		"Authorization": "Basic " + auth,
	}

	var errs []error
	for _, to := range c.cfg.To {
		form := url.Values{}
		form.Set("To", to)
		form.Set("From", c.cfg.From)
		form.Set("Body", n.Body())

		if _, err := c.base.Do(ctx, http.MethodPost, path, []byte(form.Encode()), headers); err != nil {
			errs = append(errs, fmt.Errorf("sms to %s: %w", to, err))
		}
	}
	return errors.Join(errs...)
}
