package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"

	"github.com/shopspring/decimal"
)

// YahooFinanceSource loads chart series through the relay network manager.
type YahooFinanceSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager, l *logger.Logger) *YahooFinanceSource {
	if l == nil {
		l = logger.NewLogger(cfg, "YahooFinanceSource")
	}
	return &YahooFinanceSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  l,
	}
}

// -----------------------------------------------------------------------------

// FetchSeries fetches one symbol for a displayed range. The bar interval is
// derived from the timeframe table.
func (s *YahooFinanceSource) FetchSeries(ctx context.Context, symbol, timeframe string) (models.MSeries, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.MSeries{}, helpers.NewError(helpers.KindValidation, "symbol cannot be empty", nil)
	}
	tf, ok := models.LookupTimeframe(timeframe)
	if !ok {
		return models.MSeries{}, helpers.NewError(helpers.KindValidation, fmt.Sprintf("unknown timeframe %q", timeframe), nil)
	}

	chartURL := strings.TrimRight(s.Config.DataSource.ChartURL, "/") + "/" + url.PathEscape(symbol)
	params := map[string]string{
		"interval": tf.Interval,
		"range":    tf.Range,
	}

	body, err := s.Network.Get(ctx, chartURL, params)
	if err != nil {
		return models.MSeries{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	var resp YahooChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.MSeries{}, helpers.NewError(helpers.KindMalformedResponse, "invalid chart payload", err)
	}

	points, candles, err := Normalize(resp, symbol)
	if err != nil {
		return models.MSeries{}, err
	}

	s.Logger.Info("Fetched %s (%s/%s): %d points, %d candles", symbol, tf.Range, tf.Interval, len(points), len(candles))
	return models.MSeries{
		Symbol:    symbol,
		Timeframe: tf.Range,
		Points:    points,
		Candles:   candles,
	}, nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type YahooChartResult struct {
	Meta struct {
		Currency           string  `json:"currency"`
		Symbol             string  `json:"symbol"`
		ExchangeName       string  `json:"exchangeName"`
		Timezone           string  `json:"timezone"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		DataGranularity    string  `json:"dataGranularity"`
		Range              string  `json:"range"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []YahooQuote `json:"quote"`
	} `json:"indicators"`
}

// YahooQuote holds parallel arrays; nil entries are provider nulls.
type YahooQuote struct {
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// -----------------------------------------------------------------------------

// Normalize converts a raw chart response into price points and candles.
// Null closes drop the point, any null OHLC field drops the candle, and
// candles outside their high/low envelope are discarded. Both outputs are
// sorted by ascending timestamp (milliseconds).
func Normalize(resp YahooChartResponse, symbol string) ([]models.MQuotePoint, []models.MCandle, error) {
	if len(resp.Chart.Result) == 0 {
		var cause error
		if e := resp.Chart.Error; e != nil {
			cause = fmt.Errorf("%s: %s", e.Code, e.Description)
		}
		return nil, nil, helpers.NewError(helpers.KindNoData, helpers.MsgNoData, cause)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil, helpers.NewError(helpers.KindNoData, helpers.MsgNoData, fmt.Errorf("no timestamps for %s", symbol))
	}

	var quote YahooQuote
	if len(result.Indicators.Quote) > 0 {
		quote = result.Indicators.Quote[0]
	}

	points := make([]models.MQuotePoint, 0, len(result.Timestamp))
	candles := make([]models.MCandle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		ms := ts * 1000
		volume := volumeAt(quote.Volume, i)

		closeVal := at(quote.Close, i)
		if closeVal != nil {
			points = append(points, models.MQuotePoint{
				Timestamp: ms,
				Price:     round2(*closeVal),
				Volume:    volume,
			})
		}

		open, high, low := at(quote.Open, i), at(quote.High, i), at(quote.Low, i)
		if open == nil || high == nil || low == nil || closeVal == nil {
			continue
		}

		c := models.MCandle{
			Timestamp: ms,
			Open:      round2(*open),
			Close:     round2(*closeVal),
			High:      round2(*high),
			Low:       round2(*low),
			Volume:    volume,
		}
		if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
			continue
		}
		c.IsIncreasing = c.Close >= c.Open
		candles = append(candles, c)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Timestamp < candles[j].Timestamp })

	return points, candles, nil
}

// -----------------------------------------------------------------------------

// at reads index i, treating a short array as null.
func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	v := values[i]
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func volumeAt(values []*float64, i int) int64 {
	v := at(values, i)
	if v == nil || *v < 0 {
		return 0
	}
	return int64(math.Round(*v))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
