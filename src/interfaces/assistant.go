package interfaces

import (
	"context"

	"market-assistant/src/models"
)

// -----------------------------------------------------------------------------
// ITextGenerator sends one prompt to the generative-language provider.
// -----------------------------------------------------------------------------

type ITextGenerator interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

// -----------------------------------------------------------------------------
// IAnalyzer produces a structured analysis for the displayed series.
// -----------------------------------------------------------------------------

type IAnalyzer interface {
	Analyze(ctx context.Context, series models.MSeries, selection models.MChartSelection) (models.MAnalysisResult, error)
	TestConnection(ctx context.Context) error
}

// -----------------------------------------------------------------------------
// ICredentialStore holds the provider credential.
// -----------------------------------------------------------------------------

type ICredentialStore interface {
	APIKey() string
	SetAPIKey(ctx context.Context, key string) error
}

// -----------------------------------------------------------------------------
// ICapturer grabs the screen. The image is only a trigger for analysis.
// -----------------------------------------------------------------------------

type ICapturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

// -----------------------------------------------------------------------------
// IChatController handles one chat submission for a session.
// -----------------------------------------------------------------------------
type IChatController interface {
	Submit(ctx context.Context, sessionID, input string) ([]models.MMessage, error)
}
