package view

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the absolute date format used when a time is too old, in the future or unknown.
const DateLayout = "2006-01-02"

// RelativeTime renders then relative to now in coarse human buckets, falling back to an
// absolute date for deltas of 31 days or more, negative deltas and the zero time.
func RelativeTime(then, now time.Time) string {
	if then.IsZero() {
		return then.UTC().Format(DateLayout)
	}
	delta := now.Sub(then)
	days := int(math.Floor(delta.Hours() / 24))
	if delta < 0 || days >= 31 {
		return then.UTC().Format(DateLayout)
	}

	secs := delta.Seconds()
	switch {
	case days == 0 && secs < 60:
		return "just now"
	case days == 0 && secs < 120:
		return "1 minute ago"
	case days == 0 && secs < 3600:
		return fmt.Sprintf("%d minutes ago", int(secs/60))
	case days == 0 && secs < 7200:
		return "1 hour ago"
	case days == 0:
		return fmt.Sprintf("%d hours ago", int(secs/3600))
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		weeks := int(math.Ceil(float64(days) / 7))
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	}
}
