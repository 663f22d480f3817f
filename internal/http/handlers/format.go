package handlers

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatDate formats a business date for display (yyyy-mm-dd).
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

// FormatAmount formats a currency amount with two decimals and thousands
// separators, e.g. 12345.5 -> "12,345.50".
func FormatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatPercent formats an occupancy percentage with one decimal.
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v)
}
