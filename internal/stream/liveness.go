package stream

import "time"

// IsOnline reports whether a stream that last produced data at
// lastDataReceivedAt still counts as live at now. A zero lastDataReceivedAt
// means no data was ever received, which is always offline. Elapsed time
// equal to the timeout is already offline.
func IsOnline(lastDataReceivedAt, now time.Time, timeout time.Duration) bool {
	if lastDataReceivedAt.IsZero() {
		return false
	}
	return now.Sub(lastDataReceivedAt) < timeout
}
