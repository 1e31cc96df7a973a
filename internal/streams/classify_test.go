package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"subzero-monitor/telemetry/internal/domain"
)

func TestFreezerClassification(t *testing.T) {
	tests := []struct {
		name    string
		reading domain.FreezerReading
		want    domain.Status
	}{
		{"nominal cold cabinet", domain.FreezerReading{TempCabinetC: -18}, domain.StatusHealthy},
		{"warning band", domain.FreezerReading{TempCabinetC: -12}, domain.StatusWarning},
		{"above critical threshold", domain.FreezerReading{TempCabinetC: -9.5}, domain.StatusCritical},
		{"exactly at critical threshold", domain.FreezerReading{TempCabinetC: -10}, domain.StatusWarning},
		{"exactly at warning threshold", domain.FreezerReading{TempCabinetC: -15}, domain.StatusHealthy},
		{"door open at nominal temp", domain.FreezerReading{TempCabinetC: -18, DoorOpen: true}, domain.StatusWarning},
		{"fault code beats everything", domain.FreezerReading{TempCabinetC: -18, FaultID: 3, Fault: "COMPRESSOR_FAIL"}, domain.StatusCritical},
		{"door open and critical temp picks critical", domain.FreezerReading{TempCabinetC: -8, DoorOpen: true}, domain.StatusCritical},
		{"zero-value reading means a melted cabinet", domain.FreezerReading{}, domain.StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(freezerRules, tt.reading))
		})
	}
}

func TestFreezerClassificationIsDeterministic(t *testing.T) {
	r := domain.FreezerReading{TempCabinetC: -12, DoorOpen: true}
	first := domain.Classify(freezerRules, r)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, domain.Classify(freezerRules, r))
	}
}

func TestCarClassification(t *testing.T) {
	tests := []struct {
		name    string
		reading domain.CarReading
		want    domain.Status
	}{
		{"nominal cruising", domain.CarReading{SpeedKmh: 80, CoolantTempC: 90, FuelPct: 60, EngineOn: true}, domain.StatusHealthy},
		{"coolant warning band", domain.CarReading{CoolantTempC: 105, FuelPct: 60}, domain.StatusWarning},
		{"coolant overheating", domain.CarReading{CoolantTempC: 115, FuelPct: 60}, domain.StatusCritical},
		{"trouble code set", domain.CarReading{CoolantTempC: 90, FuelPct: 60, DTC: "P0301"}, domain.StatusCritical},
		{"low fuel while running", domain.CarReading{CoolantTempC: 90, FuelPct: 5, EngineOn: true}, domain.StatusWarning},
		{"low fuel parked is fine", domain.CarReading{CoolantTempC: 90, FuelPct: 5, EngineOn: false}, domain.StatusHealthy},
		{"speeding", domain.CarReading{SpeedKmh: 130, CoolantTempC: 90, FuelPct: 60}, domain.StatusWarning},
		{"overheat beats speeding", domain.CarReading{SpeedKmh: 130, CoolantTempC: 115, FuelPct: 60}, domain.StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(carRules, tt.reading))
		})
	}
}

func TestWearableClassification(t *testing.T) {
	tests := []struct {
		name    string
		reading domain.WearableReading
		want    domain.Status
	}{
		{"resting", domain.WearableReading{HeartRateBPM: 62, BatteryPct: 80}, domain.StatusHealthy},
		{"elevated heart rate", domain.WearableReading{HeartRateBPM: 155, BatteryPct: 80}, domain.StatusWarning},
		{"tachycardia", domain.WearableReading{HeartRateBPM: 185, BatteryPct: 80}, domain.StatusCritical},
		{"fall detected at rest", domain.WearableReading{HeartRateBPM: 62, BatteryPct: 80, FallDetected: true}, domain.StatusCritical},
		{"low battery", domain.WearableReading{HeartRateBPM: 62, BatteryPct: 10}, domain.StatusWarning},
		{"missing battery field stays healthy", domain.WearableReading{HeartRateBPM: 62}, domain.StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(wearableRules, tt.reading))
		})
	}
}

func TestHomeClassification(t *testing.T) {
	tests := []struct {
		name    string
		reading domain.HomeReading
		want    domain.Status
	}{
		{"comfortable room", domain.HomeReading{TempC: 21, HumidityPct: 45, CO2PPM: 600}, domain.StatusHealthy},
		{"stuffy room", domain.HomeReading{TempC: 21, HumidityPct: 45, CO2PPM: 1500}, domain.StatusWarning},
		{"dangerous co2", domain.HomeReading{TempC: 21, HumidityPct: 45, CO2PPM: 2500}, domain.StatusCritical},
		{"overheated room", domain.HomeReading{TempC: 40, HumidityPct: 45, CO2PPM: 600}, domain.StatusWarning},
		{"freezing room", domain.HomeReading{TempC: 2, HumidityPct: 45, CO2PPM: 600}, domain.StatusWarning},
		{"damp room", domain.HomeReading{TempC: 21, HumidityPct: 85, CO2PPM: 600}, domain.StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Classify(homeRules, tt.reading))
		})
	}
}

func TestStreamDeclarations(t *testing.T) {
	assert.Equal(t, 100, Freezer().Capacity)
	assert.Equal(t, 100, Fleet().Capacity)
	assert.Equal(t, 100, Car().Capacity)

	// Timeouts diverge per cadence; everything polls on the same interval.
	assert.Equal(t, defaultOnlineTimeout, Freezer().OnlineTimeout)
	assert.Equal(t, defaultOnlineTimeout, Car().OnlineTimeout)
	assert.Equal(t, wearableOnlineTimeout, Wearable().OnlineTimeout)
	assert.Equal(t, homeOnlineTimeout, Home().OnlineTimeout)

	for _, name := range Names() {
		assert.NotEmpty(t, name)
	}
	assert.Len(t, Names(), 5)
}
