package utils

import (
	"fmt"
	"time"
)

// FormatHMS renders d as HH:MM:SS using truncating division.
//
// The hours field is not wrapped at 24 and grows past two digits when
// needed. Negative durations render as 00:00:00.
func FormatHMS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	minutes := (d / time.Minute) % 60
	seconds := (d / time.Second) % 60
	return fmt.Sprintf("%02d:%02d:%02d", int64(hours), int64(minutes), int64(seconds))
}
