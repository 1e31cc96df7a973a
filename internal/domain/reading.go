package domain

import "time"

// Reading is one immutable telemetry snapshot. Every sensor type carries at
// minimum a device identifier and a source-assigned timestamp.
type Reading interface {
	Device() string
	At() time.Time
}

type FreezerReading struct {
	DeviceID     string  `json:"device_id"`
	LocationName string  `json:"location_name"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lon"`

	TempCabinetC     float64 `json:"temp_cabinet"`
	TempAmbientC     float64 `json:"temp_ambient"`
	DoorOpen         bool    `json:"door_open"`
	DefrostOn        bool    `json:"defrost_on"`
	CompressorPowerW float64 `json:"compressor_power_w"`
	CompressorFreqHz float64 `json:"compressor_freq_hz"`
	FrostLevel       float64 `json:"frost_level"`
	COP              float64 `json:"cop"`

	Fault   string `json:"fault"`
	FaultID int    `json:"fault_id"`

	Timestamp time.Time `json:"timestamp"`
}

func (r FreezerReading) Device() string { return r.DeviceID }
func (r FreezerReading) At() time.Time  { return r.Timestamp }

type CarReading struct {
	DeviceID string `json:"device_id"`

	SpeedKmh       float64 `json:"speed_kmh"`
	RPM            float64 `json:"rpm"`
	CoolantTempC   float64 `json:"coolant_temp"`
	FuelPct        float64 `json:"fuel_pct"`
	BatteryVoltage float64 `json:"battery_voltage"`
	OdometerKm     float64 `json:"odometer_km"`
	EngineOn       bool    `json:"engine_on"`

	// DTC is the active diagnostic trouble code, empty when none is set.
	DTC string `json:"dtc"`

	Timestamp time.Time `json:"timestamp"`
}

func (r CarReading) Device() string { return r.DeviceID }
func (r CarReading) At() time.Time  { return r.Timestamp }

type WearableReading struct {
	DeviceID string `json:"device_id"`

	HeartRateBPM float64 `json:"heart_rate"`
	Steps        float64 `json:"steps"`
	AccelX       float64 `json:"accel_x"`
	AccelY       float64 `json:"accel_y"`
	AccelZ       float64 `json:"accel_z"`
	BatteryPct   float64 `json:"battery_pct"`
	FallDetected bool    `json:"fall_detected"`

	Timestamp time.Time `json:"timestamp"`
}

func (r WearableReading) Device() string { return r.DeviceID }
func (r WearableReading) At() time.Time  { return r.Timestamp }

type HomeReading struct {
	DeviceID string `json:"device_id"`

	TempC          float64 `json:"temp"`
	HumidityPct    float64 `json:"humidity"`
	CO2PPM         float64 `json:"co2_ppm"`
	PressureHPa    float64 `json:"pressure_hpa"`
	MotionDetected bool    `json:"motion"`

	Timestamp time.Time `json:"timestamp"`
}

func (r HomeReading) Device() string { return r.DeviceID }
func (r HomeReading) At() time.Time  { return r.Timestamp }
