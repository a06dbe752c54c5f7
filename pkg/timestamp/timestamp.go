// Package timestamp owns the modification clock for tracked entities.
// Update paths stamp updated_at through a Maintainer instead of trusting
// whatever value the caller supplied, so modification times cannot be
// forged from the outside.
package timestamp

import "time"

// Maintainer stamps updated_at on tracked mutations. The clock is
// injectable so tests can pin it.
type Maintainer struct {
	now func() time.Time
}

// NewMaintainer returns a Maintainer on the wall clock.
func NewMaintainer() *Maintainer {
	return &Maintainer{now: time.Now}
}

// NewMaintainerWithClock returns a Maintainer on a fixed clock function.
func NewMaintainerWithClock(now func() time.Time) *Maintainer {
	return &Maintainer{now: now}
}

// Now returns the maintainer's current time, in UTC.
func (m *Maintainer) Now() time.Time {
	return m.now().UTC()
}

// Stamp overwrites dst with the current time, discarding any
// caller-supplied value.
func (m *Maintainer) Stamp(dst *time.Time) {
	*dst = m.Now()
}
