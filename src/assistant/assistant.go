package assistant

import (
	"context"
	"time"

	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

// probeTokens bounds the connection test reply.
const probeTokens = 20

// Assistant turns the displayed series into a structured analysis.
type Assistant struct {
	Generator       interfaces.ITextGenerator
	MaxOutputTokens int
	Location        *time.Location
	Logger          *logger.Logger
}

func NewAssistant(gen interfaces.ITextGenerator, cfg models.MAssistantConfig, loc *time.Location, l *logger.Logger) *Assistant {
	if l == nil {
		l = logger.NewLogger(nil, "Assistant")
	}
	return &Assistant{
		Generator:       gen,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Location:        loc,
		Logger:          l,
	}
}

// -----------------------------------------------------------------------------

// Analyze prompts the provider once. An empty series fails with a no-data
// error before any request is made.
func (a *Assistant) Analyze(ctx context.Context, series models.MSeries, sel models.MChartSelection) (models.MAnalysisResult, error) {
	prompt, err := BuildPrompt(series, sel, a.Location)
	if err != nil {
		return models.MAnalysisResult{}, err
	}

	start := time.Now()
	reply, err := a.Generator.Generate(ctx, prompt, a.MaxOutputTokens)
	if err != nil {
		a.Logger.Warning("Analysis of %s failed: %v", sel.Symbol, err)
		return models.MAnalysisResult{}, err
	}
	a.Logger.Info("Analysis of %s (%s, %s) completed in %v", sel.Symbol, sel.Timeframe, sel.ChartType, time.Since(start).Round(time.Millisecond))

	return ParseAnalysis(reply), nil
}

// -----------------------------------------------------------------------------

// TestConnection performs the minimal provider round trip.
func (a *Assistant) TestConnection(ctx context.Context) error {
	_, err := a.Generator.Generate(ctx, connectionProbe, probeTokens)
	return err
}
