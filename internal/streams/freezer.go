package streams

import (
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/stream"
)

const (
	NameFreezer = "freezer"
	NameFleet   = "fleet"
)

// Cabinet temperature bands. A freezer warmer than −10 °C is losing its
// load; between −15 °C and −10 °C it is drifting out of range.
const (
	freezerTempCriticalC = -10.0
	freezerTempWarningC  = -15.0
)

var freezerRules = []domain.Rule[domain.FreezerReading]{
	{Status: domain.StatusCritical, Match: func(r domain.FreezerReading) bool { return r.FaultID != 0 }},
	{Status: domain.StatusCritical, Match: func(r domain.FreezerReading) bool { return r.TempCabinetC > freezerTempCriticalC }},
	{Status: domain.StatusWarning, Match: func(r domain.FreezerReading) bool { return r.DoorOpen }},
	{Status: domain.StatusWarning, Match: func(r domain.FreezerReading) bool { return r.TempCabinetC > freezerTempWarningC }},
}

// Freezer is the single-unit detail feed.
func Freezer() stream.Config[domain.FreezerReading] {
	return stream.Config[domain.FreezerReading]{
		Stream:        NameFreezer,
		Capacity:      Capacity,
		OnlineTimeout: defaultOnlineTimeout,
		PollInterval:  PollInterval,
		Decode:        decode[domain.FreezerReading],
		Rules:         freezerRules,
		Fields: []stream.Field[domain.FreezerReading]{
			{Name: "temp_cabinet", Value: func(r domain.FreezerReading) float64 { return r.TempCabinetC }},
			{Name: "temp_ambient", Value: func(r domain.FreezerReading) float64 { return r.TempAmbientC }},
			{Name: "compressor_power_w", Value: func(r domain.FreezerReading) float64 { return r.CompressorPowerW }},
			{Name: "frost_level", Value: func(r domain.FreezerReading) float64 { return r.FrostLevel }},
		},
	}
}

// Fleet carries all freezer units interleaved for the map page. Same
// reading shape and thresholds as the unit feed, different aggregates.
func Fleet() stream.Config[domain.FreezerReading] {
	return stream.Config[domain.FreezerReading]{
		Stream:        NameFleet,
		Capacity:      Capacity,
		OnlineTimeout: defaultOnlineTimeout,
		PollInterval:  PollInterval,
		Decode:        decode[domain.FreezerReading],
		Rules:         freezerRules,
		Fields: []stream.Field[domain.FreezerReading]{
			{Name: "temp_cabinet", Value: func(r domain.FreezerReading) float64 { return r.TempCabinetC }},
			{Name: "compressor_power_w", Value: func(r domain.FreezerReading) float64 { return r.CompressorPowerW }},
			{Name: "cop", Value: func(r domain.FreezerReading) float64 { return r.COP }},
		},
	}
}
