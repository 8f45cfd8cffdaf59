package imu

// Raw represents a single raw sample from the headset IMU.
type Raw struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// RawSource is anything that can deliver raw IMU samples: the real SPI
// sensor, or a replay/mock source in tests.
type RawSource interface {
	ReadRaw() (Raw, error)
}
