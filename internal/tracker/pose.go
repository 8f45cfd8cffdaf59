package tracker

import (
	"math"

	"github.com/visorlabs/headtrack/internal/rotation"
)

// Pose is the wire representation of an orientation at a point in time:
// the quaternion itself plus the derived Euler angles in degrees, which is
// what the console and web viewers display.
type Pose struct {
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`

	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`

	Timestamp int64 `json:"timestamp_ns"`
}

// NewPose builds a Pose from a rotation and its timestamp.
func NewPose(r rotation.Rotation, timestamp int64) Pose {
	return Pose{
		QX:        r.X,
		QY:        r.Y,
		QZ:        r.Z,
		QW:        r.W,
		Roll:      r.Roll() * 180.0 / math.Pi,
		Pitch:     r.Pitch() * 180.0 / math.Pi,
		Yaw:       r.Yaw() * 180.0 / math.Pi,
		Timestamp: timestamp,
	}
}

// Rotation reconstructs the quaternion carried by the pose.
func (p Pose) Rotation() rotation.Rotation {
	return rotation.Rotation{X: p.QX, Y: p.QY, Z: p.QZ, W: p.QW}
}
