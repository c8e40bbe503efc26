package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/tidwall/gjson"
)

// Relay modes
const (
	RelayWrapped = "wrapped" // JSON envelope, payload under "contents"
	RelayRaw     = "raw"     // payload returned as-is
	RelayNone    = "none"    // direct request
)

// RelayNetworkManager performs GETs through the configured CORS relay.
type RelayNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Client       *http.Client
	Logger       *logger.Logger
	RetryDelay   time.Duration // base backoff, grows with the square of the attempt

	mu sync.Mutex
}

// -----------------------------------------------------------------------------

func NewRelayNetworkManager(cfg *models.MConfig, log *logger.Logger) *RelayNetworkManager {
	if log == nil {
		log = logger.NewLogger(cfg, "NetworkManager")
	}
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	nm := &RelayNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log),
		Logger:       log,
		RetryDelay:   time.Second,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *RelayNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			if proxyURL, err := url.Parse(proxyStr); err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *RelayNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}
	nm.ProxyManager.RotateProxy()
	client := nm.createClient()

	nm.mu.Lock()
	nm.Client = client
	nm.mu.Unlock()
}

func (nm *RelayNetworkManager) client() *http.Client {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.Client
}

// -----------------------------------------------------------------------------

// BuildURL returns the final request URL for target with params, wrapped for
// the configured relay mode.
func (nm *RelayNetworkManager) BuildURL(target string, params map[string]string) (string, error) {
	reqURL, err := url.Parse(target)
	if err != nil {
		return "", helpers.NewError(helpers.KindValidation, "invalid url", err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqURL.RawQuery = q.Encode()

	switch nm.relayMode() {
	case RelayWrapped, RelayRaw:
		return nm.Config.Network.RelayURL + url.QueryEscape(reqURL.String()), nil
	default:
		return reqURL.String(), nil
	}
}

func (nm *RelayNetworkManager) relayMode() string {
	if nm.Config.Network.RelayMode == "" {
		return RelayNone
	}
	return nm.Config.Network.RelayMode
}

// -----------------------------------------------------------------------------

// Get performs a GET request. Retries (with proxy rotation) only happen when
// the configuration asks for them.
func (nm *RelayNetworkManager) Get(ctx context.Context, target string, params map[string]string) ([]byte, error) {
	finalURL, err := nm.BuildURL(target, params)
	if err != nil {
		return nil, err
	}

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i*i) * nm.RetryDelay):
			}
			nm.rotateProxy()
		}

		body, err := nm.doGet(ctx, finalURL)
		if err == nil {
			return nm.unwrap(body)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		nm.Logger.Debug("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------

func (nm *RelayNetworkManager) doGet(ctx context.Context, finalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, helpers.NewError(helpers.KindValidation, "invalid request", err)
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.client().Do(req)
	if err != nil {
		return nil, helpers.NewError(helpers.KindNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, helpers.NewError(helpers.KindNetwork, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Provider 4xx replies carry a JSON error document (unknown symbol,
		// no data) that the caller classifies itself.
		if nm.relayMode() != RelayWrapped && resp.StatusCode >= 400 && resp.StatusCode < 500 && gjson.ValidBytes(body) {
			nm.Logger.Debug("Passing through %d JSON reply", resp.StatusCode)
			return body, nil
		}
		return nil, helpers.NewError(helpers.KindNetwork, fmt.Sprintf("bad status: %d", resp.StatusCode), nil)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

// unwrap removes the relay envelope in wrapped mode. Contents win over the
// upstream status: an error document is still the provider's answer.
func (nm *RelayNetworkManager) unwrap(body []byte) ([]byte, error) {
	if nm.relayMode() != RelayWrapped {
		return body, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, helpers.NewError(helpers.KindMalformedResponse, "relay returned invalid JSON", nil)
	}

	contents := gjson.GetBytes(body, "contents")
	if contents.Exists() && contents.Type != gjson.Null && contents.String() != "" {
		return []byte(contents.String()), nil
	}

	if code := gjson.GetBytes(body, "status.http_code"); code.Exists() && code.Int() >= 400 {
		return nil, helpers.NewError(helpers.KindNetwork, fmt.Sprintf("upstream status: %d", code.Int()), nil)
	}
	return nil, helpers.NewError(helpers.KindMalformedResponse, "relay response has no contents", nil)
}
