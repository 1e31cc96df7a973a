package streams

import (
	"time"

	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/stream"
)

const NameHome = "home"

const (
	homeCO2CriticalPPM  = 2000.0
	homeCO2WarningPPM   = 1200.0
	homeTempLowC        = 5.0
	homeTempHighC       = 35.0
	homeHumidityWarnPct = 70.0

	// The home sensor reports on a slow cadence.
	homeOnlineTimeout = 60 * time.Second
)

var homeRules = []domain.Rule[domain.HomeReading]{
	{Status: domain.StatusCritical, Match: func(r domain.HomeReading) bool { return r.CO2PPM > homeCO2CriticalPPM }},
	{Status: domain.StatusWarning, Match: func(r domain.HomeReading) bool { return r.CO2PPM > homeCO2WarningPPM }},
	{Status: domain.StatusWarning, Match: func(r domain.HomeReading) bool { return r.TempC < homeTempLowC || r.TempC > homeTempHighC }},
	{Status: domain.StatusWarning, Match: func(r domain.HomeReading) bool { return r.HumidityPct > homeHumidityWarnPct }},
}

// Home is the home environment sensor feed.
func Home() stream.Config[domain.HomeReading] {
	return stream.Config[domain.HomeReading]{
		Stream:        NameHome,
		Capacity:      Capacity,
		OnlineTimeout: homeOnlineTimeout,
		PollInterval:  PollInterval,
		Decode:        decode[domain.HomeReading],
		Rules:         homeRules,
		Fields: []stream.Field[domain.HomeReading]{
			{Name: "temp", Value: func(r domain.HomeReading) float64 { return r.TempC }},
			{Name: "humidity", Value: func(r domain.HomeReading) float64 { return r.HumidityPct }},
			{Name: "co2_ppm", Value: func(r domain.HomeReading) float64 { return r.CO2PPM }},
		},
	}
}
