package utils

import "time"

// DateStamp formats t as YYYY-MM-DD in the local calendar of t
func DateStamp(t time.Time) string {
	return t.Format("2006-01-02")
}
