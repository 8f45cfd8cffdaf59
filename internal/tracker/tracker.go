// Package tracker ties the rotation history to the sensor and render sides
// of the system: a sensor goroutine records samples, a render or publish
// goroutine asks for a pose at a display timestamp slightly in the future.
package tracker

import (
	"sync"
	"time"

	"github.com/visorlabs/headtrack/internal/history"
	"github.com/visorlabs/headtrack/internal/rotation"
)

// HeadTracker wraps a RotationHistory with the locking the raw buffer
// intentionally omits. Record is called from the sensor loop, the pose
// queries from the render/publish loop; the RWMutex keeps that split safe
// without blocking readers against each other.
type HeadTracker struct {
	mu      sync.RWMutex
	hist    *history.RotationHistory
	predict time.Duration
}

// New creates a tracker whose history holds capacity samples and whose
// PredictedPose queries look predict ahead of the supplied timestamp to
// compensate for sensor-to-display latency.
func New(capacity int, predict time.Duration) *HeadTracker {
	return &HeadTracker{
		hist:    history.New(capacity),
		predict: predict,
	}
}

// Record adds a rotation sample. Timestamps must be non-decreasing across
// calls; that is the producer's contract and is not checked here.
func (t *HeadTracker) Record(r rotation.Rotation, timestamp int64) {
	t.mu.Lock()
	t.hist.AddSample(r, timestamp)
	t.mu.Unlock()
}

// Ready reports whether the history is fully primed and poses are
// interpolated rather than defaulted.
func (t *HeadTracker) Ready() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hist.IsValid()
}

// PoseAt returns the pose for the given timestamp, interpolating between the
// recorded samples. Before the history is primed this is the identity pose.
func (t *HeadTracker) PoseAt(timestamp int64) Pose {
	t.mu.RLock()
	r := t.hist.Interpolated(timestamp)
	t.mu.RUnlock()
	return NewPose(r, timestamp)
}

// PredictedPose returns the pose for now plus the configured prediction
// lead. Since the history clamps to its newest sample rather than
// extrapolating, the prediction degrades to the latest known orientation
// when the lead outruns the buffered samples.
func (t *HeadTracker) PredictedPose(now int64) Pose {
	return t.PoseAt(now + t.predict.Nanoseconds())
}

// Latest returns the most recent pose without interpolation, suitable for
// raw telemetry.
func (t *HeadTracker) Latest() Pose {
	t.mu.RLock()
	r := t.hist.Latest()
	ts := t.hist.LatestTimestamp()
	t.mu.RUnlock()
	return NewPose(r, ts)
}
