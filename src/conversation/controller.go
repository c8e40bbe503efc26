package conversation

import (
	"context"
	"fmt"

	"market-assistant/src/assistant"
	"market-assistant/src/helpers"
	"market-assistant/src/interfaces"
	"market-assistant/src/logger"
	"market-assistant/src/models"
)

// Replies
const (
	ReplyKeyUpdated = "API key updated successfully!"
	ReplyKeyMissing = "Please provide a valid API key after the /apikey command."
	ReplyTestOK     = "API Connection Successful!"
	ReplyTestFailed = "API Connection Failed. Please check your API key and try again."
	ReplyHelp       = `Here are some commands you can use:

1. Ask for chart analysis: "Analyze this chart" or "Should I buy or sell?"
2. Get specific pattern detection: "What patterns do you see?"
3. Ask about support/resistance: "What are the support and resistance levels?"
4. Update API key: "/apikey YOUR_NEW_API_KEY"
5. Get help: "/help" or "help"
6. Test connection: "/test" or "test connection"

I'll provide information specifically about the stock chart you're currently viewing.`
)

// Controller routes chat input to the command handlers.
type Controller struct {
	Sessions    *SessionManager
	View        interfaces.ISeriesView
	Analyzer    interfaces.IAnalyzer
	Credentials interfaces.ICredentialStore
	Capturer    interfaces.ICapturer // optional
	Logger      *logger.Logger

	errors *helpers.ErrorHandler
}

// -----------------------------------------------------------------------------

func NewController(sessions *SessionManager, view interfaces.ISeriesView, analyzer interfaces.IAnalyzer,
	creds interfaces.ICredentialStore, capturer interfaces.ICapturer, l *logger.Logger) *Controller {
	if l == nil {
		l = logger.NewLogger(nil, "Conversation")
	}
	return &Controller{
		Sessions:    sessions,
		View:        view,
		Analyzer:    analyzer,
		Credentials: creds,
		Capturer:    capturer,
		Logger:      l,
		errors:      helpers.NewErrorHandler(l),
	}
}

// -----------------------------------------------------------------------------

// Submit appends the user message and exactly one reply to the session and
// returns both. A session already handling a message rejects the input with
// ErrSessionBusy and appends nothing.
func (c *Controller) Submit(ctx context.Context, sessionID, input string) ([]models.MMessage, error) {
	s, err := c.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !s.acquire() {
		return nil, ErrSessionBusy
	}
	defer s.release()

	userMsg := newMessage(models.RoleUser, models.KindPlain, input)
	s.append(userMsg)

	reply := c.dispatch(ctx, Classify(input))
	s.append(reply)
	return []models.MMessage{userMsg, reply}, nil
}

// -----------------------------------------------------------------------------

func (c *Controller) dispatch(ctx context.Context, cmd Command) models.MMessage {
	switch cmd := cmd.(type) {
	case ApiKeyCmd:
		return c.updateKey(ctx, cmd.Key)
	case HelpCmd:
		return newMessage(models.RoleAssistant, models.KindInfo, ReplyHelp)
	case TestCmd:
		return c.testConnection(ctx)
	case CaptureIntent:
		c.capture(ctx)
		return c.analyze(ctx)
	case AnalysisIntent, Freeform:
		return c.analyze(ctx)
	default:
		panic(fmt.Sprintf("conversation: unhandled command %T", cmd))
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) updateKey(ctx context.Context, key string) models.MMessage {
	if key == "" {
		return newMessage(models.RoleAssistant, models.KindError, ReplyKeyMissing)
	}
	if err := c.Credentials.SetAPIKey(ctx, key); err != nil {
		c.errors.Handle(err, "update API key")
		return newMessage(models.RoleAssistant, models.KindError, helpers.UserMessage(err))
	}
	return newMessage(models.RoleAssistant, models.KindInfo, ReplyKeyUpdated)
}

func (c *Controller) testConnection(ctx context.Context) models.MMessage {
	if err := c.Analyzer.TestConnection(ctx); err != nil {
		c.errors.Handle(err, "connection test")
		return newMessage(models.RoleAssistant, models.KindError, ReplyTestFailed)
	}
	return newMessage(models.RoleAssistant, models.KindInfo, ReplyTestOK)
}

// capture grabs the screen when a capturer is configured. The image is not
// used and a failure never blocks the analysis that follows.
func (c *Controller) capture(ctx context.Context) {
	if c.Capturer == nil {
		c.Logger.Debug("Screen capture not configured, analysing chart data")
		return
	}
	img, err := c.Capturer.Capture(ctx)
	if err != nil {
		c.errors.Handle(helpers.NewError(helpers.KindPermissionDenied, "screen capture failed", err), "capture")
		return
	}
	c.Logger.Info("Captured %d bytes, analysing chart data", len(img))
}

func (c *Controller) analyze(ctx context.Context) models.MMessage {
	snap := c.View.Snapshot()
	result, err := c.Analyzer.Analyze(ctx, snap.Series, snap.Selection)
	if err != nil {
		c.errors.Handle(err, "analysis")
		kind := models.KindError
		if helpers.IsKind(err, helpers.KindNoData) {
			kind = models.KindWarning
		}
		return newMessage(models.RoleAssistant, kind, helpers.UserMessage(err))
	}

	msg := newMessage(models.RoleAssistant, models.KindPlain,
		"Analysis for "+assistant.DisplaySymbol(snap.Selection.Symbol)+":")
	msg.Analysis = &result
	return msg
}
