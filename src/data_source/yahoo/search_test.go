package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"market-assistant/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchShortQueryMakesNoRequest(t *testing.T) {
	net := &fakeNetwork{}
	s := NewSymbolSearch(config.Default().MConfig, net, nil)

	assert.Empty(t, s.Search(context.Background(), "a"))
	assert.Empty(t, s.Search(context.Background(), "  r "))
	assert.Zero(t, net.calls)
}

func TestSearchDisallowedExchangesOnly(t *testing.T) {
	net := &fakeNetwork{body: []byte(`{"quotes":[
		{"symbol":"AB","shortname":"AB Inc","exchange":"NMS","quoteType":"EQUITY"},
		{"symbol":"ABX.L","shortname":"ABX","exchange":"LSE","quoteType":"EQUITY"},
		{"symbol":"^GSPC","shortname":"S&P 500","exchange":"SNP","quoteType":"INDEX","market":"us_market"}]}`)}
	s := NewSymbolSearch(config.Default().MConfig, net, nil)

	out := s.Search(context.Background(), "ab")
	assert.Empty(t, out)
	assert.Equal(t, 1, net.calls)
	assert.Equal(t, "ab", net.lastParams["q"])
	assert.Equal(t, "10", net.lastParams["quotesCount"])
	assert.Equal(t, "0", net.lastParams["newsCount"])
	assert.Equal(t, "0", net.lastParams["listsCount"])
}

func TestSearchKeepsIndianListingsInProviderOrder(t *testing.T) {
	net := &fakeNetwork{body: []byte(`{"quotes":[
		{"symbol":"RELIANCE.NS","shortname":"RELIANCE IND","longname":"Reliance Industries Limited","exchange":"NSI","quoteType":"EQUITY"},
		{"symbol":"RELIANCE.BO","shortname":"RELIANCE","exchange":"BSE","quoteType":"EQUITY"},
		{"symbol":"RELI","shortname":"Reliance Global","exchange":"NCM","quoteType":"EQUITY"},
		{"symbol":"^NSEI","shortname":"NIFTY 50","exchange":"NSI","quoteType":"INDEX","market":"in_market"},
		{"symbol":"RELIANCE.NS","shortname":"dup","exchange":"NSI","quoteType":"EQUITY"}]}`)}
	s := NewSymbolSearch(config.Default().MConfig, net, nil)

	out := s.Search(context.Background(), "reliance")
	require.Len(t, out, 3)
	assert.Equal(t, "RELIANCE.NS", out[0].Symbol)
	assert.Equal(t, "Reliance Industries Limited", out[0].DisplayName)
	assert.Equal(t, "RELIANCE.BO", out[1].Symbol)
	assert.Equal(t, "RELIANCE", out[1].DisplayName)
	assert.Equal(t, "^NSEI", out[2].Symbol)
}

func TestSearchIndexMarketTag(t *testing.T) {
	net := &fakeNetwork{body: []byte(`{"quotes":[
		{"symbol":"^CNXIT","shortname":"NIFTY IT","exchange":"XYZ","quoteType":"INDEX","market":"in_market"}]}`)}
	s := NewSymbolSearch(config.Default().MConfig, net, nil)

	out := s.Search(context.Background(), "nifty it")
	require.Len(t, out, 1)
	assert.Equal(t, "^CNXIT", out[0].Symbol)
}

func TestSearchCapsAtTen(t *testing.T) {
	var quotes []string
	for i := 0; i < 15; i++ {
		quotes = append(quotes, fmt.Sprintf(`{"symbol":"S%d.NS","shortname":"S%d","exchange":"NSI"}`, i, i))
	}
	net := &fakeNetwork{body: []byte(`{"quotes":[` + strings.Join(quotes, ",") + `]}`)}
	s := NewSymbolSearch(config.Default().MConfig, net, nil)

	out := s.Search(context.Background(), "stock")
	require.Len(t, out, 10)
	assert.Equal(t, "S0.NS", out[0].Symbol)
	assert.Equal(t, "S9.NS", out[9].Symbol)
}

func TestSearchSwallowsErrors(t *testing.T) {
	s := NewSymbolSearch(config.Default().MConfig, &fakeNetwork{err: errors.New("relay down")}, nil)
	out := s.Search(context.Background(), "tcs")
	assert.NotNil(t, out)
	assert.Empty(t, out)

	s = NewSymbolSearch(config.Default().MConfig, &fakeNetwork{body: []byte("not json")}, nil)
	assert.Empty(t, s.Search(context.Background(), "tcs"))
}
