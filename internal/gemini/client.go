package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	// DefaultStopSentinel is the provider's "normal finish" marker. It is a
	// client configuration value, not a constant sprinkled at call sites.
	DefaultStopSentinel = "STOP"
)

type ClientConfig struct {
	Endpoint     string
	StopSentinel string
	HTTPClient   *http.Client
}

// Client talks to the generateContent endpoint and normalizes every response
// into exactly one of: text, APIError, RejectedError, TerminatedError,
// ErrMalformedResponse or NetworkError.
type Client struct {
	endpoint     string
	stopSentinel string
	hc           *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.StopSentinel == "" {
		cfg.StopSentinel = DefaultStopSentinel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{
		endpoint:     strings.TrimSuffix(cfg.Endpoint, "/"),
		stopSentinel: cfg.StopSentinel,
		hc:           cfg.HTTPClient,
	}
}

// requestURL accepts both bare model ids and ids already carrying a
// "models/" prefix; both resolve to the same REST path.
func (c *Client) requestURL(model, apiKey string) string {
	if strings.HasPrefix(model, "models/") {
		return fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.endpoint, model, apiKey)
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.endpoint, model, apiKey)
}

// GenerateParts performs a single-turn call with an ordered list of parts.
func (c *Client) GenerateParts(ctx context.Context, apiKey, model string, parts []Part) (string, error) {
	return c.Generate(ctx, apiKey, model, []Content{{Parts: parts}})
}

// Generate posts the given turn history and extracts the first candidate's
// text.
func (c *Client) Generate(ctx context.Context, apiKey, model string, contents []Content) (string, error) {
	if apiKey == "" {
		return "", ErrNoAPIKey
	}
	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(model, apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	return c.decode(ctx, resp.StatusCode, raw)
}

func (c *Client) decode(ctx context.Context, status int, raw []byte) (string, error) {
	var result generateResponse
	parseErr := json.Unmarshal(raw, &result)

	if status < 200 || status >= 300 {
		msg := strings.TrimSpace(string(raw))
		if parseErr == nil && result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return "", &APIError{Status: status, Message: msg}
	}
	if parseErr == nil {
		if text, ok := candidateText(result); ok {
			return text, nil
		}
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return "", &RejectedError{Reason: result.PromptFeedback.BlockReason}
		}
		if len(result.Candidates) > 0 {
			if reason := result.Candidates[0].FinishReason; reason != "" && reason != c.stopSentinel {
				return "", &TerminatedError{Reason: reason}
			}
		}
	}
	logutil.GetLogger(ctx).Error("invalid gemini response structure", zap.ByteString("body", raw))
	return "", ErrMalformedResponse
}

func candidateText(result generateResponse) (string, bool) {
	if len(result.Candidates) == 0 {
		return "", false
	}
	content := result.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	if content.Parts[0].Text == "" {
		return "", false
	}
	return content.Parts[0].Text, true
}
