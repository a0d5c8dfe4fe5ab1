package countdown

import (
	"fmt"
	"time"
)

// Format renders a remaining time as m:ss, or h:mm:ss from one hour up.
// Partial seconds round up so a countdown shows 0:00 only once it has expired.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	seconds := int64((d + time.Second - 1) / time.Second)
	hours, seconds := seconds/3600, seconds%3600
	minutes, seconds := seconds/60, seconds%60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// String renders the timer's remaining time with Format.
func (t *Timer) String() string {
	return Format(t.Remaining())
}
