package metrics

// Collector receives pipeline events. Implementations must be safe for
// concurrent use and must never block message processing on failure.
type Collector interface {
	// Add one processed message, with pipeline time in milliseconds
	MessageProcessed(timeMs int64)
	// Add one message that failed at the boundary
	MessageError()
	// Add one remote-extraction failure that fell back to the local parser
	ExtractionFallback()
}

// Noop discards all events; used when no metrics backend is configured.
type Noop struct{}

func (Noop) MessageProcessed(timeMs int64) {}
func (Noop) MessageError()                 {}
func (Noop) ExtractionFallback()           {}

var _ Collector = Noop{}
