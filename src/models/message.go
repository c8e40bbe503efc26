package models

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message kinds
const (
	KindPlain   = "plain"
	KindInfo    = "info"
	KindWarning = "warning"
	KindError   = "error"
	KindPrompt  = "prompt"
)

// MAnalysisResult is the structured reply of one chart analysis.
type MAnalysisResult struct {
	Recommendation string `json:"recommendation"`
	TargetPrice    string `json:"targetPrice"`
	Patterns       string `json:"patterns"`
	Support        string `json:"support"`
	Resistance     string `json:"resistance"`
	Disclaimer     string `json:"disclaimer"`
}

// MMessage is one entry of a conversation log. Analysis is set instead of
// Text for structured replies.
type MMessage struct {
	ID        string           `json:"id"`
	Role      string           `json:"role"`
	Kind      string           `json:"kind"`
	Text      string           `json:"text,omitempty"`
	Analysis  *MAnalysisResult `json:"analysis,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
