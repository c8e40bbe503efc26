package assistant

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
	"time"

	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/tidwall/gjson"
)

// -----------------------------------------------------------------------------
// Wire types
// -----------------------------------------------------------------------------

type GeminiRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// -----------------------------------------------------------------------------

// GeminiClient calls the generateContent REST endpoint. The credential is
// read from the store on every request.
type GeminiClient struct {
	Endpoint    string
	Temperature float64
	Credentials interfaces.ICredentialStore
	HTTP        *http.Client
	Logger      *logger.Logger
}

func NewGeminiClient(cfg models.MAssistantConfig, creds interfaces.ICredentialStore, l *logger.Logger) *GeminiClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if l == nil {
		l = logger.NewLogger(nil, "GeminiClient")
	}
	return &GeminiClient{
		Endpoint:    cfg.Endpoint,
		Temperature: cfg.Temperature,
		Credentials: creds,
		HTTP:        &http.Client{Timeout: timeout},
		Logger:      l,
	}
}

// -----------------------------------------------------------------------------

// Generate sends prompt and returns the first candidate text. There is no
// retry; every failure is classified into an error kind.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	key := strings.TrimSpace(g.Credentials.APIKey())
	if key == "" {
		return "", helpers.NewError(helpers.KindAuthorization, "no API key configured", nil)
	}

	payload, err := json.Marshal(GeminiRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     g.Temperature,
		},
	})
	if err != nil {
		return "", helpers.NewError(helpers.KindInternal, "failed to encode request", err)
	}

	reqURL := g.Endpoint + "?key=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", helpers.NewError(helpers.KindBadRequest, "invalid endpoint", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", helpers.NewError(helpers.KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", helpers.NewError(helpers.KindNetwork, "failed to read response", err)
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		g.Logger.Warning("Provider returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", helpers.NewError(helpers.KindMalformedResponse, "Invalid response format from API", nil)
	}
	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if !text.Exists() || strings.TrimSpace(text.String()) == "" {
		return "", helpers.NewError(helpers.KindMalformedResponse, "Empty response from API", nil)
	}
	return text.String(), nil
}

// -----------------------------------------------------------------------------

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusForbidden:
		return helpers.NewError(helpers.KindAuthorization, "API access denied", nil)
	case code == http.StatusTooManyRequests:
		return helpers.NewError(helpers.KindRateLimit, "rate limited", nil)
	case code == http.StatusNotFound || code == http.StatusBadRequest:
		return helpers.NewError(helpers.KindBadRequest, fmt.Sprintf("bad request (status %d)", code), nil)
	default:
		return helpers.NewError(helpers.KindInternal, fmt.Sprintf("API request failed with status %d", code), nil)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
