package encouragement

import (
	"fmt"
	"time"
)

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatTimeAgo renders d in the coarsest fitting unit, e.g. "just now",
// "about an hour ago", "yesterday" or "3 weeks ago". Months are 30 days and
// years 365 days. Negative durations are treated as zero.
func FormatTimeAgo(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	if seconds < 10 {
		return "just now"
	}
	if seconds < 60 {
		return plural(seconds, "second")
	}

	minutes := seconds / 60
	if minutes < 60 {
		if minutes == 1 {
			return "about a minute ago"
		}
		return plural(minutes, "minute")
	}

	hours := minutes / 60
	if hours < 24 {
		if hours == 1 {
			return "about an hour ago"
		}
		return plural(hours, "hour")
	}

	days := hours / 24
	switch {
	case days == 1:
		return "yesterday"
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	}
	return plural(days/365, "year")
}
