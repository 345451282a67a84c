package exporter

import (
	"fmt"
	"strconv"
	"time"

	"conflictpanel/internal/config"
	"conflictpanel/pkg/contracts/domain"
)

// formatFloat formats a float64 with the shortest representation that
// round-trips, without exponent
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatOptionalFloat renders a missing measure as an empty field
func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate renders a calendar day, or an empty field for the zero time
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(config.OutputDateLayout)
}

// formatFlag renders a boolean as 0/1
func formatFlag(b bool) string {
	return domain.IndicatorOf(b).String()
}

// formatGap renders a day difference the way a duration column reads
func formatGap(days int, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d days", days)
}
