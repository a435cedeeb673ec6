package d2d

import "fmt"

// Generation identifies one continuous incarnation of the hardware
// device behind a [Device]. It starts at 0 when the device is acquired
// and advances by exactly one each time a device loss is detected.
//
// Every device-dependent resource carries the Generation it was built
// under. A resource whose generation no longer matches its Device is
// stale and is rebuilt from its descriptor the next time it is used.
// Generations only ever increase; handles from an older generation are
// dropped, never reused.
type Generation uint64

// String implements fmt.Stringer for log output.
func (g Generation) String() string {
	return fmt.Sprintf("gen%d", uint64(g))
}
