package conversation

import "strings"

// Command is the classified form of one chat input.
type Command interface {
	command()
}

type (
	// ApiKeyCmd replaces the provider credential. Key may be empty.
	ApiKeyCmd struct{ Key string }
	HelpCmd   struct{}
	TestCmd   struct{}
	// AnalysisIntent asks for an analysis of the displayed chart.
	AnalysisIntent struct{}
	// CaptureIntent asks the assistant to look at the screen.
	CaptureIntent struct{}
	// Freeform is anything else. It is answered with an analysis too.
	Freeform struct{ Text string }
)

func (ApiKeyCmd) command()      {}
func (HelpCmd) command()        {}
func (TestCmd) command()        {}
func (AnalysisIntent) command() {}
func (CaptureIntent) command()  {}
func (Freeform) command()       {}

const apiKeyPrefix = "/apikey"

var analysisKeywords = []string{
	"analyze", "analyse", "chart", "graph", "buy", "sell",
	"should i buy", "should i sell", "pattern", "recommend",
	"what do you think", "what's your opinion",
}

var captureKeywords = []string{
	"screen", "capture", "screenshot", "look at my screen",
	"what do you see", "what's on my screen",
}

// -----------------------------------------------------------------------------

// Classify maps input to a command. Command forms win over keyword intents,
// and analysis keywords win over capture keywords.
func Classify(input string) Command {
	text := strings.TrimSpace(input)
	lower := strings.ToLower(text)

	if lower == apiKeyPrefix || strings.HasPrefix(lower, apiKeyPrefix+" ") {
		return ApiKeyCmd{Key: strings.TrimSpace(text[len(apiKeyPrefix):])}
	}
	switch lower {
	case "help", "/help":
		return HelpCmd{}
	case "/test", "test connection":
		return TestCmd{}
	}
	if containsAny(lower, analysisKeywords) {
		return AnalysisIntent{}
	}
	if containsAny(lower, captureKeywords) {
		return CaptureIntent{}
	}
	return Freeform{Text: text}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
