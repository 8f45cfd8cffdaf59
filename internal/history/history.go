// Package history provides a fixed-capacity, timestamped buffer of rotation
// samples and the time-indexed interpolation query the render loop uses to
// fetch a pose for an arbitrary display timestamp.
package history

import "github.com/visorlabs/headtrack/internal/rotation"

// Sample pairs a rotation with the sensor timestamp it was produced at, in
// nanoseconds.
type Sample struct {
	Rotation  rotation.Rotation `json:"rotation"`
	Timestamp int64             `json:"timestamp_ns"`
}

// RotationHistory is a FIFO ring of rotation samples with a capacity fixed at
// construction. Timestamps are expected to be non-decreasing in insertion
// order; that is a precondition on the producer, not something the buffer
// enforces, and the interpolation scan relies on it.
//
// The buffer itself carries no locking: it assumes a single writer and a
// single reader on the same goroutine, or an external lock when the sensor
// and render goroutines are split (see tracker.HeadTracker). No method
// allocates after construction, so queries fit a per-frame time budget.
type RotationHistory struct {
	buf  []Sample
	head int // next write position
	size int
}

// New creates a history holding up to capacity samples. Capacities below 1
// are raised to 1.
func New(capacity int) *RotationHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &RotationHistory{buf: make([]Sample, capacity)}
}

// Capacity returns the fixed sample capacity.
func (h *RotationHistory) Capacity() int {
	return len(h.buf)
}

// Len returns the number of samples currently buffered.
func (h *RotationHistory) Len() int {
	return h.size
}

// AddSample appends a rotation sample, evicting the oldest one once the
// buffer is full.
func (h *RotationHistory) AddSample(r rotation.Rotation, timestamp int64) {
	h.buf[h.head] = Sample{Rotation: r, Timestamp: timestamp}
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// IsValid reports whether the buffer has been fully primed, i.e. holds
// exactly capacity samples. Interpolation refuses to run before that.
func (h *RotationHistory) IsValid() bool {
	return h.size == len(h.buf)
}

// Latest returns the most recently added rotation, or the identity rotation
// (0, 0, 0, 1) if the buffer is empty.
func (h *RotationHistory) Latest() rotation.Rotation {
	if h.size == 0 {
		return rotation.Identity()
	}
	return h.at(h.size - 1).Rotation
}

// LatestTimestamp returns the most recently added timestamp, or 0 if the
// buffer is empty.
func (h *RotationHistory) LatestTimestamp() int64 {
	if h.size == 0 {
		return 0
	}
	return h.at(h.size - 1).Timestamp
}

// Interpolated returns the rotation for the query timestamp.
//
// On an unprimed buffer it returns the identity rotation. When the query
// falls strictly between two buffered timestamps the two bracketing samples
// are blended with a component-wise linear interpolation. The result is
// deliberately not renormalized; for large angular gaps between neighbors
// this shortens the quaternion slightly, which is the known tradeoff of
// naive lerp versus spherical interpolation. When no strict bracket exists
// (query at or past the newest sample, or at or before the oldest) the
// newest buffered sample is returned verbatim: the buffer clamps instead of
// extrapolating.
//
// A query exactly equal to a stored timestamp counts as a lower bound, so it
// reproduces that sample rather than blending across it.
func (h *RotationHistory) Interpolated(timestamp int64) rotation.Rotation {
	if !h.IsValid() {
		return rotation.Identity()
	}

	smaller := -1
	larger := -1
	for i := 0; i < h.size; i++ {
		ts := h.at(i).Timestamp
		if ts <= timestamp {
			smaller = i
		} else {
			larger = i
			break
		}
	}

	if smaller >= 0 && larger >= 0 {
		a := h.at(smaller)
		b := h.at(larger)
		t := float64(timestamp-a.Timestamp) / float64(b.Timestamp-a.Timestamp)
		return lerp(a.Rotation, b.Rotation, t)
	}

	return h.at(h.size - 1).Rotation
}

// at returns the i-th buffered sample, oldest first.
func (h *RotationHistory) at(i int) Sample {
	idx := (h.head - h.size + i + len(h.buf)) % len(h.buf)
	return h.buf[idx]
}

// lerp blends two rotations component-wise by fraction t without
// renormalizing the result.
func lerp(a, b rotation.Rotation, t float64) rotation.Rotation {
	return rotation.Rotation{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}
