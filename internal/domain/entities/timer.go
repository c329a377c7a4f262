package entities

import (
	"fmt"
	"time"
)

// TimeWarning classifies how close an exam is to running out of time.
type TimeWarning string

const (
	WarningNormal   TimeWarning = "normal"
	WarningWarning  TimeWarning = "warning"
	WarningCritical TimeWarning = "critical"
	WarningExpired  TimeWarning = "expired"
)

// WarningLevel returns the warning level for the remaining time.
func WarningLevel(remaining time.Duration) TimeWarning {
	switch {
	case remaining <= 0:
		return WarningExpired
	case remaining <= time.Minute:
		return WarningCritical
	case remaining <= 10*time.Minute:
		return WarningWarning
	default:
		return WarningNormal
	}
}

// FormatClock formats a duration as H:MM:SS. Negative durations format as 0:00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int64(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
