package collector

import "time"

// PowerReading is one snapshot of the machine's power state.
type PowerReading struct {
	Timestamp time.Time `json:"timestamp"`

	// Actual power flow: positive = charging, negative = discharging (W)
	WattsActual float64 `json:"watts_actual"`
	// PD negotiated maximum power (W)
	WattsNegotiated int `json:"watts_negotiated"`

	Voltage  float64 `json:"voltage"`  // V
	Amperage float64 `json:"amperage"` // A

	CurrentCapacity int `json:"current_capacity"` // mAh
	MaxCapacity     int `json:"max_capacity"`     // mAh
	BatteryPercent  int `json:"battery_percent"`  // 0-100

	IsCharging        bool `json:"is_charging"`
	ExternalConnected bool `json:"external_connected"`

	ChargerName         string `json:"charger_name,omitempty"`
	ChargerManufacturer string `json:"charger_manufacturer,omitempty"`
}

// CalculateWatts computes power from voltage (V) and amperage (A).
func CalculateWatts(voltage, amperage float64) float64 {
	return voltage * amperage
}
