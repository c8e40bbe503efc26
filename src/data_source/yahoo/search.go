package yahoo

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

const (
	minQueryLength = 2
	maxSuggestions = 10
)

// SymbolSearch queries the provider search endpoint and keeps Indian listings.
type SymbolSearch struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

func NewSymbolSearch(cfg *models.MConfig, netMgr interfaces.INetworkManager, l *logger.Logger) *SymbolSearch {
	if l == nil {
		l = logger.NewLogger(cfg, "SymbolSearch")
	}
	return &SymbolSearch{Config: cfg, Network: netMgr, Logger: l}
}

// -----------------------------------------------------------------------------

type yahooSearchResponse struct {
	Quotes []yahooSearchQuote `json:"quotes"`
}

type yahooSearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quoteType"`
	Market    string `json:"market"`
}

// -----------------------------------------------------------------------------

// Search never fails: short queries, transport errors and bad payloads all
// yield an empty list.
func (s *SymbolSearch) Search(ctx context.Context, query string) []models.MSymbolSuggestion {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return []models.MSymbolSuggestion{}
	}

	params := map[string]string{
		"q":           query,
		"quotesCount": "10",
		"newsCount":   "0",
		"listsCount":  "0",
	}
	body, err := s.Network.Get(ctx, s.Config.DataSource.SearchURL, params)
	if err != nil {
		s.Logger.Warning("Symbol search for %q failed: %v", query, err)
		return []models.MSymbolSuggestion{}
	}

	var resp yahooSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		s.Logger.Warning("Symbol search for %q returned invalid JSON: %v", query, err)
		return []models.MSymbolSuggestion{}
	}

	return s.filter(resp.Quotes)
}

// -----------------------------------------------------------------------------

func (s *SymbolSearch) filter(quotes []yahooSearchQuote) []models.MSymbolSuggestion {
	out := make([]models.MSymbolSuggestion, 0, maxSuggestions)
	seen := make(map[string]struct{})

	for _, q := range quotes {
		if len(out) == maxSuggestions {
			break
		}
		if q.Symbol == "" || !s.allowed(q) {
			continue
		}
		if _, dup := seen[q.Symbol]; dup {
			continue
		}
		seen[q.Symbol] = struct{}{}

		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		if name == "" {
			name = q.Symbol
		}
		out = append(out, models.MSymbolSuggestion{Symbol: q.Symbol, DisplayName: name})
	}
	return out
}

// allowed keeps listings on the configured exchanges and indices of the
// configured market.
func (s *SymbolSearch) allowed(q yahooSearchQuote) bool {
	for _, ex := range s.Config.DataSource.Exchanges {
		if strings.EqualFold(q.Exchange, ex) {
			return true
		}
	}
	market := s.Config.DataSource.IndexMarket
	return strings.EqualFold(q.QuoteType, "INDEX") && market != "" && strings.EqualFold(q.Market, market)
}
