package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"market-assistant/src/analysis"
	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

// ErrSuperseded is returned by a load whose result was discarded because a
// newer selection started after it.
var ErrSuperseded = errors.New("load superseded by a newer selection")

// Dashboard owns the chart selection and the series loaded for it.
type Dashboard struct {
	Source       interfaces.IQuoteSource
	FetchTimeout time.Duration
	Logger       *logger.Logger

	mu         sync.RWMutex
	state      models.MDashboardSnapshot
	generation uint64
	cancel     context.CancelFunc
	exchanger  interfaces.IDataExchanger
	listeners  []interfaces.ISelectionListener
	onSelect   func(models.MChartSelection)
}

// -----------------------------------------------------------------------------

func NewDashboard(cfg *models.MConfig, source interfaces.IQuoteSource, l *logger.Logger) *Dashboard {
	if l == nil {
		l = logger.NewLogger(cfg, "Dashboard")
	}
	ds := cfg.DataSource
	return &Dashboard{
		Source:       source,
		FetchTimeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		Logger:       l,
		state: models.MDashboardSnapshot{
			Selection: models.MChartSelection{
				Symbol:    ds.DefaultSymbol,
				Timeframe: ds.DefaultTimeframe,
				ChartType: ds.DefaultChartType,
			},
		},
	}
}

// -----------------------------------------------------------------------------

// SetExchanger attaches the push channel for snapshots.
func (d *Dashboard) SetExchanger(x interfaces.IDataExchanger) {
	d.mu.Lock()
	d.exchanger = x
	d.mu.Unlock()
}

// AddListener registers l for symbol changes.
func (d *Dashboard) AddListener(l interfaces.ISelectionListener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// OnSelect registers a hook run after every accepted selection.
func (d *Dashboard) OnSelect(fn func(models.MChartSelection)) {
	d.mu.Lock()
	d.onSelect = fn
	d.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Snapshot returns the current state. Series slices are replaced on every
// load and never mutated, so sharing them is safe.
func (d *Dashboard) Snapshot() models.MDashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Dashboard) Selection() models.MChartSelection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state.Selection
}

// -----------------------------------------------------------------------------

// Normalize fills blank fields from current and validates the result.
func Normalize(sel, current models.MChartSelection) (models.MChartSelection, error) {
	sel.Symbol = strings.ToUpper(strings.TrimSpace(sel.Symbol))
	if sel.Symbol == "" {
		sel.Symbol = current.Symbol
	}
	if sel.Timeframe == "" {
		sel.Timeframe = current.Timeframe
	}
	if sel.ChartType == "" {
		sel.ChartType = current.ChartType
	}

	if sel.Symbol == "" {
		return sel, helpers.NewError(helpers.KindValidation, "symbol cannot be empty", nil)
	}
	if _, ok := models.LookupTimeframe(sel.Timeframe); !ok {
		return sel, helpers.NewError(helpers.KindValidation, fmt.Sprintf("unknown timeframe %q", sel.Timeframe), nil)
	}
	if sel.ChartType != models.ChartTypeLine && sel.ChartType != models.ChartTypeCandlestick {
		return sel, helpers.NewError(helpers.KindValidation, fmt.Sprintf("unknown chart type %q", sel.ChartType), nil)
	}
	return sel, nil
}

// -----------------------------------------------------------------------------

// Select applies a new selection. Symbol or timeframe changes reload the
// series; a chart type change only recomputes the header stats.
func (d *Dashboard) Select(ctx context.Context, sel models.MChartSelection) (models.MDashboardSnapshot, error) {
	current := d.Selection()
	sel, err := Normalize(sel, current)
	if err != nil {
		return d.Snapshot(), err
	}

	symbolChanged := sel.Symbol != current.Symbol
	needsLoad := symbolChanged || sel.Timeframe != current.Timeframe

	if symbolChanged {
		d.notifyListeners(sel.Symbol)
	}
	d.runOnSelect(sel)

	if needsLoad {
		return d.load(ctx, sel)
	}

	d.mu.Lock()
	d.state.Selection = sel
	d.state.Stats = stats(d.state.Series, sel.ChartType)
	snap := d.state
	d.mu.Unlock()

	d.broadcast(snap)
	return snap, nil
}

// Refresh reloads the current selection.
func (d *Dashboard) Refresh(ctx context.Context) (models.MDashboardSnapshot, error) {
	return d.load(ctx, d.Selection())
}

// -----------------------------------------------------------------------------

// load fetches sel under a new generation. Starting a load cancels the one
// in flight, and a result whose generation is no longer current is dropped.
func (d *Dashboard) load(ctx context.Context, sel models.MChartSelection) (models.MDashboardSnapshot, error) {
	if d.FetchTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, d.FetchTimeout)
		defer cancelTimeout()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	d.generation++
	gen := d.generation
	d.cancel = cancel
	prevError := d.state.Error
	d.state.Selection = sel
	d.state.Loading = true
	d.state.Error = ""
	d.state.Generation = gen
	loading := d.state
	d.mu.Unlock()

	d.broadcast(loading)

	series, err := d.Source.FetchSeries(fetchCtx, sel.Symbol, sel.Timeframe)

	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		d.Logger.Debug("Discarding stale load of %s/%s (generation %d)", sel.Symbol, sel.Timeframe, gen)
		return d.Snapshot(), ErrSuperseded
	}
	d.cancel = nil
	d.state.Loading = false
	// The caller walked away; what is on screen is still the last good load.
	if errors.Is(err, context.Canceled) {
		d.state.Error = prevError
		snap := d.state
		d.mu.Unlock()
		d.Logger.Debug("Load of %s/%s cancelled by caller", sel.Symbol, sel.Timeframe)
		d.broadcast(snap)
		return snap, err
	}
	if err != nil {
		d.state.Series = models.MSeries{Symbol: sel.Symbol, Timeframe: sel.Timeframe}
		d.state.Stats = nil
		d.state.Error = bannerMessage(err)
	} else {
		d.state.Series = series
		d.state.Stats = stats(series, sel.ChartType)
		d.state.LastUpdated = time.Now()
	}
	snap := d.state
	d.mu.Unlock()

	if err != nil {
		d.Logger.Warning("Failed to load %s/%s: %v", sel.Symbol, sel.Timeframe, err)
	}
	d.broadcast(snap)
	return snap, err
}

// -----------------------------------------------------------------------------

func (d *Dashboard) broadcast(snap models.MDashboardSnapshot) {
	d.mu.RLock()
	x := d.exchanger
	d.mu.RUnlock()
	if x != nil {
		x.Broadcast(snap)
	}
}

func (d *Dashboard) notifyListeners(symbol string) {
	d.mu.RLock()
	listeners := append([]interfaces.ISelectionListener(nil), d.listeners...)
	d.mu.RUnlock()
	for _, l := range listeners {
		l.NotifySelectionChanged(symbol)
	}
}

func (d *Dashboard) runOnSelect(sel models.MChartSelection) {
	d.mu.RLock()
	fn := d.onSelect
	d.mu.RUnlock()
	if fn != nil {
		fn(sel)
	}
}

func stats(series models.MSeries, chartType string) *models.MSeriesStats {
	s, ok := analysis.Summarize(series, chartType)
	if !ok {
		return nil
	}
	return &s
}

func bannerMessage(err error) string {
	var appErr *helpers.AppError
	if errors.As(err, &appErr) {
		return "Failed to fetch data: " + appErr.Message
	}
	return "Failed to fetch data: " + err.Error()
}
