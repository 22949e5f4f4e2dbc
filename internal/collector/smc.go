package collector

import (
	"github.com/narumiruna/powerflow/internal/logger"
	"github.com/narumiruna/powerflow/internal/smc"
)

// smcClient is the slice of the SMC connection the collector uses.
type smcClient interface {
	smc.KeyReader
	Close() error
}

// SMCCollector enriches the ioreg-based reading with direct SMC sensor
// data. Any SMC failure degrades to the plain fallback result; the
// overall collection never fails because of the SMC path.
type SMCCollector struct {
	fallback Collector
	open     func() (smcClient, error)
}

// NewSMCCollector wraps the given fallback collector with SMC sensor
// enrichment.
func NewSMCCollector(fallback Collector) *SMCCollector {
	return newSMCCollector(fallback, func() (smcClient, error) {
		return smc.Open()
	})
}

func newSMCCollector(fallback Collector, open func() (smcClient, error)) *SMCCollector {
	return &SMCCollector{
		fallback: fallback,
		open:     open,
	}
}

func (c *SMCCollector) Collect() (*PowerReading, error) {
	reading, err := c.collectWithSMC()
	if err == nil {
		return reading, nil
	}

	logger.Info().Err(err).Msg("SMC unavailable, falling back to ioreg")

	return c.fallback.Collect()
}

func (c *SMCCollector) collectWithSMC() (*PowerReading, error) {
	// The fallback supplies everything the SMC does not independently
	// produce: battery percent, voltage, charger identity, flags.
	reading, err := c.fallback.Collect()
	if err != nil {
		return nil, err
	}

	conn, err := c.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Debug().Err(err).Msg("Failed to close SMC connection")
		}
	}()

	data := smc.ReadSensors(conn)

	// PDTR reports input power directly and beats the ioreg-derived
	// voltage*current product when available.
	if data.PowerInput != nil {
		reading.WattsActual = *data.PowerInput
	}

	return reading, nil
}
