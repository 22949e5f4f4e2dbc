package collector

// Collector produces one PowerReading per invocation.
type Collector interface {
	Collect() (*PowerReading, error)
}
