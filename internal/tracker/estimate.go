package tracker

import (
	"math"

	"github.com/visorlabs/headtrack/internal/imu"
	"github.com/visorlabs/headtrack/internal/rotation"
)

// GyroScaleForRange returns the conversion from raw gyro counts to rad/s
// for an MPU-9250 range setting (0=±250°/s, 1=±500°/s, 2=±1000°/s,
// 3=±2000°/s).
func GyroScaleForRange(gyroRange byte) float64 {
	fullScaleDeg := 250.0 * float64(int(1)<<gyroRange)
	return fullScaleDeg / 32768.0 * math.Pi / 180.0
}

// EstimateRotation turns one raw IMU sample into a rotation sample.
//
// Roll and pitch come from the accelerometer tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Yaw cannot be observed from gravity, so it is carried forward from the
// previous rotation and advanced by integrating the Z gyro rate over dt
// seconds. gyroScale converts raw gyro counts to rad/s. This is a simple
// tilt estimate, not a full fusion filter; it is good enough to feed the
// history buffer and keeps the producer loop allocation-free.
func EstimateRotation(raw imu.Raw, prev rotation.Rotation, dt, gyroScale float64) rotation.Rotation {
	ax := float64(raw.Ax)
	ay := float64(raw.Ay)
	az := float64(raw.Az)

	roll := math.Atan2(ay, az)
	pitch := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))
	yaw := prev.Yaw() + float64(raw.Gz)*gyroScale*dt

	return rotation.FromEuler(yaw, pitch, roll)
}
