package cache

// NoopMetrics discards every signal. It is the default Metrics sink.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}

var _ Metrics = NoopMetrics{}
