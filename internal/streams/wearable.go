package streams

import (
	"math"
	"time"

	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/stream"
)

const NameWearable = "wearable"

const (
	wearableHRCriticalBPM  = 180.0
	wearableHRWarningBPM   = 150.0
	wearableBatteryWarnPct = 15.0

	// The tracker pushes every couple of seconds; 30s of silence would hide
	// a dead sensor for far too long.
	wearableOnlineTimeout = 15 * time.Second
)

var wearableRules = []domain.Rule[domain.WearableReading]{
	{Status: domain.StatusCritical, Match: func(r domain.WearableReading) bool { return r.FallDetected }},
	{Status: domain.StatusCritical, Match: func(r domain.WearableReading) bool { return r.HeartRateBPM >= wearableHRCriticalBPM }},
	{Status: domain.StatusWarning, Match: func(r domain.WearableReading) bool { return r.HeartRateBPM >= wearableHRWarningBPM }},
	{Status: domain.StatusWarning, Match: func(r domain.WearableReading) bool { return r.BatteryPct > 0 && r.BatteryPct < wearableBatteryWarnPct }},
}

// Wearable is the body tracker feed.
func Wearable() stream.Config[domain.WearableReading] {
	return stream.Config[domain.WearableReading]{
		Stream:        NameWearable,
		Capacity:      Capacity,
		OnlineTimeout: wearableOnlineTimeout,
		PollInterval:  PollInterval,
		Decode:        decode[domain.WearableReading],
		Rules:         wearableRules,
		Fields: []stream.Field[domain.WearableReading]{
			{Name: "heart_rate", Value: func(r domain.WearableReading) float64 { return r.HeartRateBPM }},
			{Name: "steps", Value: func(r domain.WearableReading) float64 { return r.Steps }},
			{Name: "accel_magnitude", Value: accelMagnitude},
		},
	}
}

func accelMagnitude(r domain.WearableReading) float64 {
	return math.Sqrt(r.AccelX*r.AccelX + r.AccelY*r.AccelY + r.AccelZ*r.AccelZ)
}
