package network

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"market-assistant/src/config"
	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

const notFoundChart = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newManager(mutate func(n *models.MNetworkConfig)) *RelayNetworkManager {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg.Network)
	}
	nm := NewRelayNetworkManager(cfg.MConfig, nil)
	nm.RetryDelay = time.Millisecond
	return nm
}

// relay serves body with status for every request.
func relay(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// -----------------------------------------------------------------------------

func TestBuildURLPerRelayMode(t *testing.T) {
	params := map[string]string{"range": "1mo", "interval": "1d"}
	target := "https://quotes.example/v8/finance/chart/TCS.NS"
	escaped := "https%3A%2F%2Fquotes.example%2Fv8%2Ffinance%2Fchart%2FTCS.NS%3Finterval%3D1d%26range%3D1mo"

	for _, mode := range []string{RelayWrapped, RelayRaw} {
		nm := newManager(func(n *models.MNetworkConfig) { n.RelayMode = mode })
		got, err := nm.BuildURL(target, params)
		require.NoError(t, err)
		assert.Equal(t, "https://api.allorigins.win/get?url="+escaped, got, mode)
	}

	nm := newManager(func(n *models.MNetworkConfig) { n.RelayMode = RelayNone })
	got, err := nm.BuildURL(target, params)
	require.NoError(t, err)
	assert.Equal(t, target+"?interval=1d&range=1mo", got)

	_, err = nm.BuildURL("://bad", nil)
	assert.True(t, helpers.IsKind(err, helpers.KindValidation))
}

func TestGetUnwrapsRelayEnvelope(t *testing.T) {
	targets := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		targets <- r.URL.Query().Get("url")
		io.WriteString(w, `{"contents":"{\"chart\":{\"result\":[]}}","status":{"http_code":200}}`)
	}))
	t.Cleanup(srv.Close)

	nm := newManager(func(n *models.MNetworkConfig) { n.RelayURL = srv.URL + "/get?url=" })
	body, err := nm.Get(context.Background(), "https://quotes.example/chart/TCS.NS", map[string]string{"range": "1d"})
	require.NoError(t, err)
	assert.Equal(t, `{"chart":{"result":[]}}`, string(body))
	assert.Equal(t, "https://quotes.example/chart/TCS.NS?range=1d", <-targets)
}

func TestGetKeepsProviderErrorDocumentFromRelay(t *testing.T) {
	envelope := `{"contents":` + quoteJSON(notFoundChart) + `,"status":{"http_code":404}}`
	srv := relay(t, http.StatusOK, envelope)

	nm := newManager(func(n *models.MNetworkConfig) { n.RelayURL = srv.URL + "/get?url=" })
	body, err := nm.Get(context.Background(), "https://quotes.example/chart/NOPE.NS", nil)
	require.NoError(t, err)
	assert.JSONEq(t, notFoundChart, string(body))
}

func TestGetEnvelopeFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
		kind helpers.ErrorKind
	}{
		{"invalid json", `<html>busy</html>`, helpers.KindMalformedResponse},
		{"null contents", `{"contents":null,"status":{"http_code":200}}`, helpers.KindMalformedResponse},
		{"missing contents", `{"status":{"http_code":200}}`, helpers.KindMalformedResponse},
		{"upstream failure", `{"contents":null,"status":{"http_code":503}}`, helpers.KindNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := relay(t, http.StatusOK, tc.body)
			nm := newManager(func(n *models.MNetworkConfig) { n.RelayURL = srv.URL + "/get?url=" })
			_, err := nm.Get(context.Background(), "https://quotes.example/chart", nil)
			require.Error(t, err)
			assert.Equal(t, tc.kind, helpers.KindOf(err))
		})
	}
}

func TestDirectModeStatusHandling(t *testing.T) {
	direct := func(n *models.MNetworkConfig) { n.RelayMode = RelayNone }

	srv := relay(t, http.StatusNotFound, notFoundChart)
	body, err := newManager(direct).Get(context.Background(), srv.URL+"/chart/NOPE.NS", nil)
	require.NoError(t, err)
	assert.JSONEq(t, notFoundChart, string(body))

	srv = relay(t, http.StatusNotFound, "<html>not found</html>")
	_, err = newManager(direct).Get(context.Background(), srv.URL, nil)
	assert.True(t, helpers.IsKind(err, helpers.KindNetwork))

	srv = relay(t, http.StatusInternalServerError, `{"error":"boom"}`)
	_, err = newManager(direct).Get(context.Background(), srv.URL, nil)
	assert.True(t, helpers.IsKind(err, helpers.KindNetwork))
}

func TestRequestHeaders(t *testing.T) {
	nm := newManager(func(n *models.MNetworkConfig) {
		n.RelayMode = RelayNone
		n.UserAgent = "market-assistant-test"
	})
	nm.Client = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "market-assistant-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "q=tata", r.URL.RawQuery)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{"quotes":[]}`)),
		}, nil
	})}

	body, err := nm.Get(context.Background(), "https://quotes.example/search", map[string]string{"q": "tata"})
	require.NoError(t, err)
	assert.Equal(t, `{"quotes":[]}`, string(body))
}

func TestNoRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	nm := newManager(func(n *models.MNetworkConfig) { n.RelayMode = RelayNone })
	require.NotNil(t, nm.Logger)
	_, err := nm.Get(context.Background(), srv.URL, nil)
	assert.True(t, helpers.IsKind(err, helpers.KindNetwork))
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetryRotatesProxy(t *testing.T) {
	var first, second atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(failing.Close)
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		second.Add(1)
		assert.Equal(t, "quotes.example", r.URL.Host)
		io.WriteString(w, `{"ok":true}`)
	}))
	t.Cleanup(working.Close)

	nm := newManager(func(n *models.MNetworkConfig) {
		n.Enabled = true
		n.Proxies = []string{failing.URL, working.URL}
		n.MaxRetries = 1
		n.RelayMode = RelayNone
	})

	body, err := nm.Get(context.Background(), "http://quotes.example/chart", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())

	current, err := nm.ProxyManager.GetCurrentProxy()
	require.NoError(t, err)
	assert.Equal(t, working.URL, current)
}

func TestRetryStopsOnCancel(t *testing.T) {
	srv := relay(t, http.StatusBadGateway, "")
	nm := newManager(func(n *models.MNetworkConfig) {
		n.RelayMode = RelayNone
		n.MaxRetries = 3
	})
	nm.RetryDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := nm.Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// quoteJSON encodes s as a JSON string literal.
func quoteJSON(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
