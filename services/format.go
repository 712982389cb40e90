package services

import (
	"fmt"
	"strings"
	"time"
)

func normalizeAvailable(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// hasNowMarker matches the site's "available right now" phrasings.
func hasNowMarker(lowered string) bool {
	return strings.HasPrefix(lowered, "już") || strings.Contains(lowered, "teraz")
}

// FormatRemaining renders a duration in Polish, the way the alerts read it:
// days and hours once days are present, otherwise hours and minutes, with
// Polish three-form pluralization.
func FormatRemaining(d time.Duration) string {
	total := int(d.Seconds())
	if total <= 0 {
		return "mniej niż minuta"
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, pluralDays(days)))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, pluralHours(hours)))
	}
	// with days on the board, minute precision is noise
	if minutes > 0 && days == 0 {
		parts = append(parts, fmt.Sprintf("%d %s", minutes, pluralMinutes(minutes)))
	}

	if len(parts) == 0 {
		return "mniej niż minuta"
	}
	return strings.Join(parts, " ")
}

func pluralDays(n int) string {
	if n == 1 {
		return "dzień"
	}
	return "dni"
}

func pluralHours(n int) string {
	switch {
	case n == 1:
		return "godzina"
	case n >= 2 && n <= 4:
		return "godziny"
	default:
		return "godzin"
	}
}

func pluralMinutes(n int) string {
	switch {
	case n == 1:
		return "minuta"
	case n >= 2 && n <= 4:
		return "minuty"
	default:
		return "minut"
	}
}
