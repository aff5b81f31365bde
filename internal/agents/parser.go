package agents

import (
	"regexp"
	"strings"

	"cryptopilot/internal/models"
)

var actionPattern = regexp.MustCompile(`(?i)\b(BUY|SELL|HOLD)\b`)

// ParseRecommendations extracts one recommendation per requested symbol from
// an LLM response. Parsing degrades in stages: the structured line format
// first, then a loose per-line action match, then HOLD. A symbol the
// response never mentions parses to HOLD.
func ParseRecommendations(response string, symbols []string) map[string]models.Recommendation {
	recs := make(map[string]models.Recommendation, len(symbols))
	lines := strings.Split(response, "\n")

	for _, symbol := range symbols {
		rec := models.Recommendation{
			Symbol:    symbol,
			Action:    models.ActionHold,
			Priority:  models.PriorityLow,
			Reasoning: "no recommendation parsed",
		}

		if line, ok := findSymbolLine(lines, symbol); ok {
			if parsed, ok := parseStructuredLine(symbol, line); ok {
				rec = parsed
			} else if action, ok := parseLooseAction(line); ok {
				rec.Action = action
				rec.Reasoning = strings.TrimSpace(line)
			}
		}
		recs[symbol] = rec
	}
	return recs
}

// findSymbolLine returns the first line mentioning the symbol as a whole
// word.
func findSymbolLine(lines []string, symbol string) (string, bool) {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(symbol) + `\b`)
	for _, line := range lines {
		if pattern.MatchString(line) {
			return line, true
		}
	}
	return "", false
}

// parseStructuredLine parses "SYMBOL: ACTION | PRIORITY | reasoning".
func parseStructuredLine(symbol, line string) (models.Recommendation, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return models.Recommendation{}, false
	}

	parts := strings.Split(line[idx+1:], "|")
	if len(parts) < 2 {
		return models.Recommendation{}, false
	}

	action, ok := parseAction(parts[0])
	if !ok {
		return models.Recommendation{}, false
	}

	rec := models.Recommendation{
		Symbol:   symbol,
		Action:   action,
		Priority: parsePriority(parts[1]),
	}
	if len(parts) > 2 {
		rec.Reasoning = strings.TrimSpace(strings.Join(parts[2:], "|"))
	}
	return rec, true
}

// parseLooseAction finds a bare BUY/SELL/HOLD keyword anywhere in the line.
func parseLooseAction(line string) (models.Action, bool) {
	match := actionPattern.FindString(line)
	if match == "" {
		return "", false
	}
	return models.Action(strings.ToUpper(match)), true
}

func parseAction(s string) (models.Action, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return models.ActionBuy, true
	case "SELL":
		return models.ActionSell, true
	case "HOLD":
		return models.ActionHold, true
	default:
		return "", false
	}
}

func parsePriority(s string) models.Priority {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return models.PriorityHigh
	case "MEDIUM":
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
