package interfaces

import (
	"context"

	"market-assistant/src/models"
)

// -----------------------------------------------------------------------------
// IQuoteSource loads a normalized series for one symbol and timeframe.
// -----------------------------------------------------------------------------

type IQuoteSource interface {
	FetchSeries(ctx context.Context, symbol, timeframe string) (models.MSeries, error)
}

// -----------------------------------------------------------------------------
// ISymbolSearch turns a partial query into exchange-filtered suggestions.
// Failures degrade to an empty list.
// -----------------------------------------------------------------------------

type ISymbolSearch interface {
	Search(ctx context.Context, query string) []models.MSymbolSuggestion
}
