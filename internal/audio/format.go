package audio

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as "1 hour and 2 minutes" style text, whole seconds
// only. Durations under a second render as "0 seconds".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	for _, p := range []struct {
		n    int64
		unit string
	}{{days, "day"}, {hours, "hour"}, {minutes, "minute"}, {seconds, "second"}} {
		if p.n == 0 {
			continue
		}
		if p.n == 1 {
			parts = append(parts, fmt.Sprintf("1 %s", p.unit))
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", p.n, p.unit))
		}
	}

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}
