package collector

import (
	"math"
	"os/exec"
	"time"

	"github.com/narumiruna/powerflow/internal/errors"
	"howett.net/plist"
)

// ioregBattery mirrors the AppleSmartBattery registry properties that
// powerflow reads.
type ioregBattery struct {
	CurrentCapacity    *int            `plist:"CurrentCapacity"`
	MaxCapacity        *int            `plist:"MaxCapacity"`
	IsCharging         *bool           `plist:"IsCharging"`
	ExternalConnected  *bool           `plist:"ExternalConnected"`
	Voltage            *int            `plist:"Voltage"`                 // mV
	Amperage           *int            `plist:"Amperage"`                // mA, negative = discharging
	RawCurrentCapacity *int            `plist:"AppleRawCurrentCapacity"` // mAh
	RawMaxCapacity     *int            `plist:"AppleRawMaxCapacity"`     // mAh
	AdapterDetails     []adapterDetail `plist:"AppleRawAdapterDetails"`
}

type adapterDetail struct {
	Watts        *int    `plist:"Watts"`
	Name         *string `plist:"Name"`
	Description  *string `plist:"Description"`
	Manufacturer *string `plist:"Manufacturer"`
}

// IORegCollector reads battery state by running ioreg and parsing its
// plist output. It is the collector of last resort: always available
// on macOS, no special privileges required.
type IORegCollector struct{}

func (IORegCollector) Collect() (*PowerReading, error) {
	out, err := exec.Command("ioreg", "-rw0", "-c", "AppleSmartBattery", "-a").Output()
	if err != nil {
		return nil, errors.New().Wrap(ErrCommandFailed, err)
	}

	return ParseIOReg(out)
}

// ParseIOReg converts the output of `ioreg -rw0 -c AppleSmartBattery -a`
// into a PowerReading.
func ParseIOReg(data []byte) (*PowerReading, error) {
	errFactory := errors.New()

	// ioreg returns an array with one dict of battery properties
	var batteries []ioregBattery
	if _, err := plist.Unmarshal(data, &batteries); err != nil {
		return nil, errFactory.Wrap(ErrParseFailed, err)
	}
	if len(batteries) == 0 {
		return nil, errFactory.WithMessage(ErrParseFailed, "empty array from ioreg")
	}

	return convertReading(&batteries[0])
}

func convertReading(battery *ioregBattery) (*PowerReading, error) {
	errFactory := errors.New()

	if battery.Voltage == nil {
		return nil, errFactory.WithData(ErrMissingField, "Voltage")
	}
	if battery.Amperage == nil {
		return nil, errFactory.WithData(ErrMissingField, "Amperage")
	}

	voltage := float64(*battery.Voltage) / 1000.0   // mV to V
	amperage := float64(*battery.Amperage) / 1000.0 // mA to A

	reading := &PowerReading{
		Timestamp:   time.Now().UTC(),
		WattsActual: CalculateWatts(voltage, amperage),
		Voltage:     voltage,
		Amperage:    amperage,
	}

	if len(battery.AdapterDetails) > 0 {
		adapter := battery.AdapterDetails[0]
		if adapter.Watts != nil {
			reading.WattsNegotiated = *adapter.Watts
		}
		// Prefer Name over Description
		switch {
		case adapter.Name != nil:
			reading.ChargerName = *adapter.Name
		case adapter.Description != nil:
			reading.ChargerName = *adapter.Description
		}
		if adapter.Manufacturer != nil {
			reading.ChargerManufacturer = *adapter.Manufacturer
		}
	}

	// Prefer raw capacities (mAh) over the percentage-based ones
	current := firstInt(battery.RawCurrentCapacity, battery.CurrentCapacity)
	if current == nil {
		return nil, errFactory.WithData(ErrMissingField, "CurrentCapacity")
	}
	maxCapacity := firstInt(battery.RawMaxCapacity, battery.MaxCapacity)
	if maxCapacity == nil {
		return nil, errFactory.WithData(ErrMissingField, "MaxCapacity")
	}

	reading.CurrentCapacity = *current
	reading.MaxCapacity = *maxCapacity
	if *maxCapacity > 0 {
		reading.BatteryPercent = int(math.Round(float64(*current) / float64(*maxCapacity) * 100.0))
	}

	if battery.IsCharging != nil {
		reading.IsCharging = *battery.IsCharging
	}
	if battery.ExternalConnected != nil {
		reading.ExternalConnected = *battery.ExternalConnected
	}

	return reading, nil
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}

	return nil
}
