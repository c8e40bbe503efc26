package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-assistant/src/logger"
	"market-assistant/src/utils"

	"github.com/robfig/cron/v3"
)

// Refresher reloads the dashboard on a fixed interval.
type Refresher struct {
	Cron      *cron.Cron
	Dashboard *Dashboard
	Scheduler *utils.MarketScheduler // nil disables the market-hours gate
	Logger    *logger.Logger
	Ctx       context.Context
}

// -----------------------------------------------------------------------------

func NewRefresher(ctx context.Context, d *Dashboard, scheduler *utils.MarketScheduler, l *logger.Logger) *Refresher {
	if l == nil {
		l = logger.NewLogger(nil, "Refresher")
	}
	return &Refresher{
		Cron:      cron.New(cron.WithSeconds()),
		Dashboard: d,
		Scheduler: scheduler,
		Logger:    l,
		Ctx:       ctx,
	}
}

// -----------------------------------------------------------------------------

// Register schedules the refresh job every intervalSeconds.
func (r *Refresher) Register(intervalSeconds int) error {
	if intervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", intervalSeconds)
	}
	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	if _, err := r.Cron.AddFunc(spec, r.Tick); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

func (r *Refresher) Start() {
	r.Cron.Start()
	r.Logger.Info("Refresher started")
}

func (r *Refresher) Stop() {
	<-r.Cron.Stop().Done()
	r.Logger.Info("Refresher stopped")
}

// -----------------------------------------------------------------------------

// Tick runs one refresh unless the selected symbol's market is closed.
func (r *Refresher) Tick() {
	sel := r.Dashboard.Selection()
	if r.Scheduler != nil && !r.Scheduler.IsOpen(sel.Symbol) {
		r.Logger.Debug("Market closed for %s, skipping refresh", sel.Symbol)
		return
	}

	start := time.Now()
	_, err := r.Dashboard.Refresh(r.Ctx)
	switch {
	case errors.Is(err, ErrSuperseded):
		r.Logger.Debug("Refresh of %s superseded", sel.Symbol)
	case err != nil:
		r.Logger.Warning("Refresh of %s failed: %v", sel.Symbol, err)
	default:
		r.Logger.Debug("Refreshed %s in %v", sel.Symbol, time.Since(start))
	}
}
