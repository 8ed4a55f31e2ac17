package lower

import (
	"fmt"

	"github.com/pkg/errors"
)

// Configuration errors: the user asked for something contradictory or
// out of range. Lowering of the offending loop aborts; the message names
// the source location.
var (
	ErrAmbiguousDirective = errors.New("loop has both an hls intrinsic and an hls pragma")
	ErrBadInterval        = errors.New("invalid initiation interval")
	ErrNoDirective        = errors.New("loop requires an hls pragma or intrinsic")
	ErrUnimplemented      = errors.New("construct not supported in hardware lowering")
)

// ErrUnrollLimit is reported when unrolling hits the configured maximum.
// It is distinct from the configuration errors so tooling can suggest
// raising the cap or pipelining instead.
var ErrUnrollLimit = errors.New("loop unrolling hit the iteration limit")

// IsConfig reports whether err is a user configuration error.
func IsConfig(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrAmbiguousDirective || cause == ErrBadInterval
}

// IsNotImplemented reports whether err marks a construct this lowering
// cannot express.
func IsNotImplemented(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrNoDirective || cause == ErrUnimplemented
}

// IsResourceExhausted reports whether err is the unroll iteration cap.
func IsResourceExhausted(err error) bool {
	return errors.Cause(err) == ErrUnrollLimit
}

// assertf guards internal invariants. A failure means a defect in an
// earlier compiler stage or in this subsystem, never a user-correctable
// condition, and must not be silently tolerated.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic("lower: internal: " + fmt.Sprintf(format, args...))
	}
}
