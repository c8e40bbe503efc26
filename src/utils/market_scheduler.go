package utils

import (
	"sync"
	"time"

	"market-assistant/src/logger"
)

// MarketScheduler tracks the exchange calendar of the displayed symbol.
type MarketScheduler struct {
	Calendars map[string]*TradingCalendar
	Logger    *logger.Logger
	Now       func() time.Time
	mu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbols []string, l *logger.Logger) *MarketScheduler {
	if l == nil {
		l = logger.NewLogger(nil, "MarketScheduler")
	}
	ms := &MarketScheduler{
		Calendars: make(map[string]*TradingCalendar),
		Logger:    l,
		Now:       time.Now,
	}
	ms.UpdateSymbols(symbols)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the tracked symbols. Calendars are shared per MIC.
func (ms *MarketScheduler) UpdateSymbols(symbols []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	byMIC := make(map[string]*TradingCalendar)
	for _, cal := range ms.Calendars {
		byMIC[cal.MIC] = cal
	}

	ms.Calendars = make(map[string]*TradingCalendar)
	for _, symbol := range symbols {
		mic := MICForSymbol(symbol)
		cal, ok := byMIC[mic]
		if !ok {
			cal = GetCalendar(symbol, ms.Logger)
			byMIC[mic] = cal
		}
		ms.Calendars[symbol] = cal
	}

	ms.Logger.Debug("Mapped %d symbols to %d calendars", len(symbols), len(byMIC))
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the exchange of symbol is open now. Untracked
// symbols are looked up on demand.
func (ms *MarketScheduler) IsOpen(symbol string) bool {
	ms.mu.RLock()
	cal, ok := ms.Calendars[symbol]
	ms.mu.RUnlock()
	if !ok {
		cal = GetCalendar(symbol, ms.Logger)
	}
	return cal.IsOpenOnMinute(ms.Now())
}

// AnyMarketOpen checks if any tracked market is currently open.
func (ms *MarketScheduler) AnyMarketOpen() bool {
	now := ms.Now()

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cal := range ms.Calendars {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}
	return false
}
