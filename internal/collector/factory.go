package collector

// Default returns the power collector for this machine: the SMC-enriched
// collector wrapping the always-available ioreg fallback. On platforms
// without SMC access the wrapper degrades to the fallback on every cycle.
func Default() Collector {
	return NewSMCCollector(IORegCollector{})
}
