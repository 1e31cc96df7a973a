package streams

import (
	"subzero-monitor/telemetry/internal/domain"
	"subzero-monitor/telemetry/internal/stream"
)

const NameCar = "car"

const (
	carCoolantCriticalC = 110.0
	carCoolantWarningC  = 100.0
	carFuelWarningPct   = 10.0
	carSpeedWarningKmh  = 120.0
)

var carRules = []domain.Rule[domain.CarReading]{
	{Status: domain.StatusCritical, Match: func(r domain.CarReading) bool { return r.DTC != "" }},
	{Status: domain.StatusCritical, Match: func(r domain.CarReading) bool { return r.CoolantTempC > carCoolantCriticalC }},
	{Status: domain.StatusWarning, Match: func(r domain.CarReading) bool { return r.CoolantTempC > carCoolantWarningC }},
	{Status: domain.StatusWarning, Match: func(r domain.CarReading) bool { return r.EngineOn && r.FuelPct < carFuelWarningPct }},
	{Status: domain.StatusWarning, Match: func(r domain.CarReading) bool { return r.SpeedKmh > carSpeedWarningKmh }},
}

// Car is the OBD feed.
func Car() stream.Config[domain.CarReading] {
	return stream.Config[domain.CarReading]{
		Stream:        NameCar,
		Capacity:      Capacity,
		OnlineTimeout: defaultOnlineTimeout,
		PollInterval:  PollInterval,
		Decode:        decode[domain.CarReading],
		Rules:         carRules,
		Fields: []stream.Field[domain.CarReading]{
			{Name: "speed_kmh", Value: func(r domain.CarReading) float64 { return r.SpeedKmh }},
			{Name: "rpm", Value: func(r domain.CarReading) float64 { return r.RPM }},
			{Name: "coolant_temp", Value: func(r domain.CarReading) float64 { return r.CoolantTempC }},
			{Name: "fuel_pct", Value: func(r domain.CarReading) float64 { return r.FuelPct }},
		},
	}
}
