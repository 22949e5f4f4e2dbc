package collector

import (
	"testing"

	"github.com/narumiruna/powerflow/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batteryPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>CurrentCapacity</key><integer>82</integer>
		<key>MaxCapacity</key><integer>100</integer>
		<key>AppleRawCurrentCapacity</key><integer>4200</integer>
		<key>AppleRawMaxCapacity</key><integer>5103</integer>
		<key>Voltage</key><integer>12300</integer>
		<key>Amperage</key><integer>-680</integer>
		<key>IsCharging</key><false/>
		<key>ExternalConnected</key><true/>
		<key>AppleRawAdapterDetails</key>
		<array>
			<dict>
				<key>Watts</key><integer>96</integer>
				<key>Name</key><string>96W USB-C Power Adapter</string>
				<key>Manufacturer</key><string>Apple Inc.</string>
			</dict>
		</array>
	</dict>
</array>
</plist>`

func TestParseIOReg(t *testing.T) {
	reading, err := ParseIOReg([]byte(batteryPlist))
	require.NoError(t, err)

	assert.InDelta(t, 12.3, reading.Voltage, 0.001)
	assert.InDelta(t, -0.68, reading.Amperage, 0.001)
	assert.InDelta(t, 12.3*-0.68, reading.WattsActual, 0.001)

	// Raw capacities win over the percentage-based ones
	assert.Equal(t, 4200, reading.CurrentCapacity)
	assert.Equal(t, 5103, reading.MaxCapacity)
	assert.Equal(t, 82, reading.BatteryPercent)

	assert.Equal(t, 96, reading.WattsNegotiated)
	assert.Equal(t, "96W USB-C Power Adapter", reading.ChargerName)
	assert.Equal(t, "Apple Inc.", reading.ChargerManufacturer)

	assert.False(t, reading.IsCharging)
	assert.True(t, reading.ExternalConnected)
	assert.False(t, reading.Timestamp.IsZero())
}

func TestParseIORegMissingVoltage(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><array><dict>
	<key>Amperage</key><integer>-680</integer>
	<key>CurrentCapacity</key><integer>82</integer>
	<key>MaxCapacity</key><integer>100</integer>
</dict></array></plist>`

	_, err := ParseIOReg([]byte(data))
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrMissingField, appErr.Code())
	assert.Contains(t, err.Error(), "Voltage")
}

func TestParseIORegDescriptionFallback(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><array><dict>
	<key>Voltage</key><integer>12000</integer>
	<key>Amperage</key><integer>500</integer>
	<key>CurrentCapacity</key><integer>50</integer>
	<key>MaxCapacity</key><integer>100</integer>
	<key>AppleRawAdapterDetails</key>
	<array><dict>
		<key>Description</key><string>usb host</string>
	</dict></array>
</dict></array></plist>`

	reading, err := ParseIOReg([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "usb host", reading.ChargerName)
	assert.Zero(t, reading.WattsNegotiated)

	// Percentage-based capacities serve when raw values are absent
	assert.Equal(t, 50, reading.CurrentCapacity)
	assert.Equal(t, 100, reading.MaxCapacity)
	assert.Equal(t, 50, reading.BatteryPercent)
}

func TestParseIORegInvalid(t *testing.T) {
	_, err := ParseIOReg([]byte("not a plist"))
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrParseFailed, appErr.Code())
}

func TestParseIORegEmptyArray(t *testing.T) {
	data := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><array/></plist>`

	_, err := ParseIOReg([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty array")
}

func TestCalculateWatts(t *testing.T) {
	assert.InDelta(t, 50.0, CalculateWatts(20.0, 2.5), 0.001)
	assert.InDelta(t, -8.364, CalculateWatts(12.3, -0.68), 0.001)
}
