package assistant

import (
	"regexp"
	"strings"

	"market-assistant/src/models"
)

// Section headers requested from the provider.
const (
	SectionRecommendation = "RECOMMENDATION"
	SectionTargetPrice    = "TARGET PRICE"
	SectionPatterns       = "PATTERNS"
	SectionSupport        = "SUPPORT"
	SectionResistance     = "RESISTANCE"
)

// Disclaimer is attached to every analysis result.
const Disclaimer = "This analysis is for educational purposes only and not financial advice. Past patterns don't guarantee future results."

// headerPattern matches a section header at the start of a line. Markdown
// emphasis, bullets, numbering and a trailing "LEVEL(S)" are tolerated.
var headerPattern = regexp.MustCompile(
	`(?im)^[ \t>*#_-]*(?:\d+[.)][ \t]*)?[*_]*(RECOMMENDATION|TARGET PRICE|PATTERNS|SUPPORT|RESISTANCE)(?:[ \t]+LEVELS?)?[ \t*_]*:[ \t*_]*`,
)

// -----------------------------------------------------------------------------

// ExtractSection returns the text following header up to the next known
// header or the end of the reply, trimmed. ok is false when the header is
// absent or its content is blank.
func ExtractSection(reply, header string) (string, bool) {
	matches := headerPattern.FindAllStringSubmatchIndex(reply, -1)
	for i, m := range matches {
		name := strings.ToUpper(reply[m[2]:m[3]])
		if name != strings.ToUpper(header) {
			continue
		}
		end := len(reply)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(reply[m[1]:end])
		content = strings.TrimSpace(strings.TrimRight(content, "*_"))
		if content == "" {
			return "", false
		}
		return content, true
	}
	return "", false
}

// -----------------------------------------------------------------------------

// ParseAnalysis builds the structured result. Missing sections get the
// "<SECTION> information not available" placeholder.
func ParseAnalysis(reply string) models.MAnalysisResult {
	get := func(header string) string {
		if v, ok := ExtractSection(reply, header); ok {
			return v
		}
		return header + " information not available"
	}

	return models.MAnalysisResult{
		Recommendation: get(SectionRecommendation),
		TargetPrice:    get(SectionTargetPrice),
		Patterns:       get(SectionPatterns),
		Support:        get(SectionSupport),
		Resistance:     get(SectionResistance),
		Disclaimer:     Disclaimer,
	}
}
