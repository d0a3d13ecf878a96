package utils

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// FormatMoney renders a currency amount with thousands separators and no fraction, e.g. 8505000 -> "8,505,000".
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.0f", v)
}
