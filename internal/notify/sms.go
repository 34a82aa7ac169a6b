package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// SMSClient sends SMS through the Africa's Talking messaging API.
// A no-op when credentials are absent so callers never branch.
type SMSClient struct {
	cfg    config.SMSConfig
	http   *httputil.Client
	logger *logger.Logger
}

// NewSMSClient creates an SMS client.
func NewSMSClient(cfg config.SMSConfig, http *httputil.Client, log *logger.Logger) *SMSClient {
	client := &SMSClient{
		cfg:    cfg,
		http:   http,
		logger: log,
	}

	if !client.Configured() {
		log.Warn("SMS credentials not configured, sending disabled")
	}

	return client
}

// Configured reports whether credentials are present.
func (c *SMSClient) Configured() bool {
	return c.cfg.Username != "" && c.cfg.APIKey != ""
}

type smsRecipient struct {
	Number     string `json:"number"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

type smsResponse struct {
	SMSMessageData struct {
		Message    string         `json:"Message"`
		Recipients []smsRecipient `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send delivers a message to the recipients. Returns nil without sending
// when unconfigured.
func (c *SMSClient) Send(ctx context.Context, to []string, message string) error {
	if !c.Configured() {
		c.logger.WithField("recipients", len(to)).Debug("SMS sending skipped, not configured")
		return nil
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	form := url.Values{
		"username": {c.cfg.Username},
		"to":       {strings.Join(to, ",")},
		"message":  {message},
	}
	if c.cfg.SenderID != "" {
		form.Set("from", c.cfg.SenderID)
	}

	resp, err := c.http.PostForm(ctx, c.endpoint(), form, map[string]string{
		"apiKey": c.cfg.APIKey,
		"Accept": "application/json",
	})
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	var parsed smsResponse
	if err := httputil.ReadJSON(resp, &parsed); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"recipients": len(parsed.SMSMessageData.Recipients),
		"result":     parsed.SMSMessageData.Message,
	}).Info("SMS dispatched")

	return nil
}

func (c *SMSClient) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/version1/messaging"
}
