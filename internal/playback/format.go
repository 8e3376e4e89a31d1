package playback

import (
	"fmt"
	"time"
)

// FormatTime formats d as "m:ss": no leading zero on minutes, two-digit
// seconds. Fractions are truncated and negative values render as 0:00.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
