package app

import (
	"context"
	"fmt"

	"market-assistant/src/assistant"
	"market-assistant/src/capture"
	"market-assistant/src/chart"
	"market-assistant/src/config"
	"market-assistant/src/conversation"
	"market-assistant/src/dashboard"
	"market-assistant/src/data_source/yahoo"
	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
	"market-assistant/src/network"
	"market-assistant/src/settings"
	"market-assistant/src/storage"
	"market-assistant/src/utils"
)

// App holds every wired component shared by the service and the console.
type App struct {
	Config *config.Config
	Logger *logger.Logger

	Store       interfaces.ISettingsStore
	Network     *network.RelayNetworkManager
	Source      *yahoo.YahooFinanceSource
	Search      *yahoo.SymbolSearch
	Credentials *settings.Credentials
	Assistant   *assistant.Assistant
	Renderer    *chart.Renderer
	Dashboard   *dashboard.Dashboard
	Scheduler   *utils.MarketScheduler
	Sessions    *conversation.SessionManager
	Controller  *conversation.Controller
}

// -----------------------------------------------------------------------------

// New builds the component graph. Nothing is fetched until Restore.
func New(conf *config.Config) (*App, error) {
	cfg := conf.MConfig
	appLogger := logger.NewLogger(cfg, cfg.Name)

	store, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	renderer, err := chart.NewRenderer(cfg.Chart)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &App{Config: conf, Logger: appLogger, Store: store, Renderer: renderer}

	a.Network = network.NewRelayNetworkManager(cfg, logger.NewLogger(cfg, "NetworkManager"))
	a.Source = yahoo.NewYahooFinanceSource(cfg, a.Network, logger.NewLogger(cfg, "YahooFinanceSource"))
	a.Search = yahoo.NewSymbolSearch(cfg, a.Network, logger.NewLogger(cfg, "SymbolSearch"))

	a.Credentials = settings.NewCredentials(store, cfg.Assistant.APIKey, logger.NewLogger(cfg, "Credentials"))
	gemini := assistant.NewGeminiClient(cfg.Assistant, a.Credentials, logger.NewLogger(cfg, "GeminiClient"))
	a.Assistant = assistant.NewAssistant(gemini, cfg.Assistant, renderer.Location, logger.NewLogger(cfg, "Assistant"))

	a.Dashboard = dashboard.NewDashboard(cfg, a.Source, logger.NewLogger(cfg, "Dashboard"))
	a.Scheduler = utils.NewMarketScheduler([]string{cfg.DataSource.DefaultSymbol}, logger.NewLogger(cfg, "MarketScheduler"))
	a.Sessions = conversation.NewSessionManager()

	var capturer interfaces.ICapturer
	if c := capture.New(cfg.Capture, logger.NewLogger(cfg, "ScreenCapturer")); c != nil {
		capturer = c
	}
	a.Controller = conversation.NewController(a.Sessions, a.Dashboard, a.Assistant, a.Credentials, capturer,
		logger.NewLogger(cfg, "Conversation"))

	a.Dashboard.AddListener(a.Sessions)
	a.Dashboard.OnSelect(a.selectionChanged)
	return a, nil
}

// -----------------------------------------------------------------------------

func (a *App) selectionChanged(sel models.MChartSelection) {
	a.Scheduler.UpdateSymbols([]string{sel.Symbol})
	if err := settings.SaveSelection(context.Background(), a.Store, sel); err != nil {
		a.Logger.Warning("Failed to save selection: %v", err)
	}
}

// -----------------------------------------------------------------------------

// Restore loads the saved credential and selection, then performs the first
// quote load. A failed load is reported on the dashboard, not returned.
func (a *App) Restore(ctx context.Context) error {
	if err := a.Credentials.Load(ctx); err != nil {
		return err
	}

	saved, ok, err := settings.LoadSelection(ctx, a.Store)
	if err != nil {
		a.Logger.Warning("Ignoring saved selection: %v", err)
	}
	if ok {
		if _, err := a.Dashboard.Select(ctx, saved); err != nil && !helpers.IsKind(err, helpers.KindValidation) {
			a.Logger.Warning("Initial load failed: %v", err)
		}
	}

	// Nothing loaded yet: the saved selection was absent, invalid or only
	// changed the chart type.
	if a.Dashboard.Snapshot().Generation == 0 {
		sel := a.Dashboard.Selection()
		a.Logger.Info("Loading %s (%s, %s)", sel.Symbol, sel.Timeframe, sel.ChartType)
		if _, err := a.Dashboard.Refresh(ctx); err != nil {
			a.Logger.Warning("Initial load failed: %v", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close settings store: %w", err)
	}
	return nil
}
