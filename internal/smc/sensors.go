package smc

import "github.com/narumiruna/powerflow/internal/logger"

// Sensor keys polled each collection cycle.
const (
	KeyBatteryPower   = "PPBR" // battery power rate (W), positive when discharging
	KeyPowerInput     = "PDTR" // power delivery/input rate (W)
	KeySystemPower    = "PSTR" // system total power (W)
	KeyHeatpipePower  = "PHPC" // heatpipe/cooling power (W)
	KeyDisplayPower   = "PDBR" // display power (W)
	KeyBatteryTemp    = "TB0T" // battery temperature (°C)
	KeyChargingStatus = "CHCC" // charging status, 0 = not charging
)

// PowerData aggregates one cycle's sensor readings. A nil field means
// the sensor could not be read this cycle.
type PowerData struct {
	BatteryPower   *float64
	PowerInput     *float64
	SystemPower    *float64
	HeatpipePower  *float64
	DisplayPower   *float64
	BatteryTemp    *float64
	ChargingStatus *float64
}

// KeyReader reads a single named sensor.
type KeyReader interface {
	ReadKey(name string) (float64, error)
}

var powerSensors = []struct {
	key    string
	assign func(*PowerData, float64)
}{
	{KeyBatteryPower, func(d *PowerData, v float64) { d.BatteryPower = &v }},
	{KeyPowerInput, func(d *PowerData, v float64) { d.PowerInput = &v }},
	{KeySystemPower, func(d *PowerData, v float64) { d.SystemPower = &v }},
	{KeyHeatpipePower, func(d *PowerData, v float64) { d.HeatpipePower = &v }},
	{KeyDisplayPower, func(d *PowerData, v float64) { d.DisplayPower = &v }},
	{KeyBatteryTemp, func(d *PowerData, v float64) { d.BatteryTemp = &v }},
	{KeyChargingStatus, func(d *PowerData, v float64) { d.ChargingStatus = &v }},
}

// ReadSensors polls every known power sensor through the given reader.
// A sensor that fails to read leaves its field nil; the cycle itself
// never fails on individual sensors.
func ReadSensors(r KeyReader) *PowerData {
	data := &PowerData{}

	for _, sensor := range powerSensors {
		value, err := r.ReadKey(sensor.key)
		if err != nil {
			logger.Debug().Str("key", sensor.key).Err(err).Msg("Sensor read failed")
			continue
		}
		sensor.assign(data, value)
	}

	return data
}
