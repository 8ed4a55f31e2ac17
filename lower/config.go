package lower

import "time"

// Config holds the tunables of one lowering run.
type Config struct {
	// MaxUnrollIters is the hard cap on unrolled iterations; exceeding
	// it aborts with ErrUnrollLimit so compilation always terminates,
	// even when the oracle cannot prove the loop condition false.
	MaxUnrollIters int64

	// WarnUnrollIters is the iteration count at which a non-fatal
	// warning is logged.
	WarnUnrollIters int64

	// SlowIterWarn is the wall-clock threshold above which an unrolled
	// iteration is reported as pathologically slow.
	SlowIterWarn time.Duration

	// DefaultUnroll unrolls loops that carry no directive at all.
	DefaultUnroll bool
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		MaxUnrollIters:  1000,
		WarnUnrollIters: 100,
		SlowIterWarn:    100 * time.Millisecond,
	}
}
