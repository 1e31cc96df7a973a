package domain

import "time"

// Transition records a change of a stream's classified status.
type Transition struct {
	Stream   string
	DeviceID string
	From     Status
	To       Status
	At       time.Time
}

type FieldStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StreamSummary is the composed per-stream state handed to consumers.
type StreamSummary struct {
	Stream             string
	Status             Status
	IsConnected        bool
	IsOnline           bool
	LastDataReceivedAt time.Time
	HistoryLen         int
	Stats              map[string]FieldStats
}
