package tracker

import (
	"math"
	"time"

	"github.com/visorlabs/headtrack/internal/rotation"
)

// Source is anything that can provide timestamped rotation samples: the IMU
// estimation loop, a serial attitude sensor, or the mock below.
type Source interface {
	Next() (rotation.Rotation, int64, error)
}

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock rotation source that generates smooth head
// motion, useful for running the full pipeline without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (rotation.Rotation, int64, error) {
	elapsed := time.Since(m.start).Seconds()

	yaw := 30 * math.Sin(elapsed*0.5) * math.Pi / 180
	pitch := 15 * math.Cos(elapsed*0.7) * math.Pi / 180
	roll := 5 * math.Sin(elapsed*1.3) * math.Pi / 180

	return rotation.FromEuler(yaw, pitch, roll), time.Now().UnixNano(), nil
}
