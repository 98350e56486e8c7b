package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"textback/internal/pkg/sms/port"
)

// Error codes the provider documents as permanent rejections. Anything else
// is treated as transient and eligible for retry.
var fatalProviderCodes = map[int]bool{
	20003: true, // authentication failure
	21211: true, // invalid "To" number
	21212: true, // invalid "From" number
	21606: true, // "From" not SMS-capable
	21610: true, // recipient has opted out
}

// TwilioGateway sends SMS through the Twilio Messages REST endpoint.
type TwilioGateway struct {
	baseURL    string
	accountSID string
	authToken  string
	client     *http.Client
}

// NewTwilioGatewayFromEnv reads TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN.
func NewTwilioGatewayFromEnv() (*TwilioGateway, error) {
	sid := strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	token := strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN"))
	if sid == "" || token == "" {
		return nil, errors.New("twilio: TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set")
	}
	return NewTwilioGateway("https://api.twilio.com", sid, token), nil
}

// NewTwilioGateway constructs a gateway against baseURL. Tests point it at a
// local httptest server.
func NewTwilioGateway(baseURL, accountSID, authToken string) *TwilioGateway {
	return &TwilioGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

var _ port.Gateway = (*TwilioGateway)(nil)

func (g *TwilioGateway) Send(ctx context.Context, from, to, body string) (*port.Receipt, error) {
	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.baseURL, g.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.accountSID, g.authToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &port.GatewayError{Message: fmt.Sprintf("twilio: request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = "twilio: " + resp.Status
		}
		return nil, &port.GatewayError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Fatal:   fatalProviderCodes[apiErr.Code] || resp.StatusCode == http.StatusUnauthorized,
		}
	}

	var out struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}
	return &port.Receipt{ProviderID: out.SID, Status: out.Status}, nil
}
