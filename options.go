package s1o

import "github.com/caian-org/s1o/internal/resource"

// options collects the low-level Create/Open entry points' optional
// configuration. Unlike the spatial-adapter builders (builder.go), these
// are independent of which adapter is in play, so they stay a flat
// functional-options struct rather than a fluent builder.
type options struct {
	logger        *Logger
	metrics       MetricsCollector
	checksums     bool
	resourceCtl   *resource.Controller
	cleanBitIndex bool
}

// Option configures Create/Open behavior.
type Option func(*options)

// WithLogger attaches a Logger. The default is NoopLogger.
func WithLogger(logger *Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches a MetricsCollector. The default is
// NoopMetricsCollector.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) { o.metrics = mc }
}

// WithChecksums enables the RWP-mode CRC32C `.crc` companion: write_element
// recomputes it, read_element verifies it, failing check_data_mismatch on
// a mismatch.
func WithChecksums(enabled bool) Option {
	return func(o *options) { o.checksums = enabled }
}

// WithResourceController bounds how many goroutines Create runs at once
// while writing a fresh RWP dataset's metadata rows. A nil controller (the
// default) means unbounded. Only the controller's background-worker limit
// is used; its memory and I/O limits are not consulted.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) { o.resourceCtl = c }
}

// WithCleanBitIndex enables the roaring-bitmap-accelerated clean/dirty/
// corrupt membership index. The default is the linear-scan fallback.
func WithCleanBitIndex(enabled bool) Option {
	return func(o *options) { o.cleanBitIndex = enabled }
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
