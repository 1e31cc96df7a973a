// Package streams declares every telemetry stream the monitor follows.
// Each declaration binds a wire name to its reading shape, buffer bound,
// timing constants, classification table and tracked statistics; the
// engine in internal/stream is shared.
package streams

import (
	"encoding/json"
	"time"

	"subzero-monitor/telemetry/internal/domain"
)

const (
	// Every stream keeps the last 100 readings.
	Capacity = 100

	// Liveness is re-derived every 5 seconds regardless of message arrival.
	PollInterval = 5 * time.Second

	defaultOnlineTimeout = 30 * time.Second
)

func decode[R domain.Reading](raw json.RawMessage) (R, error) {
	var r R
	err := json.Unmarshal(raw, &r)
	return r, err
}

// Names lists the declared stream names in wiring order.
func Names() []string {
	return []string{NameFreezer, NameFleet, NameCar, NameWearable, NameHome}
}
