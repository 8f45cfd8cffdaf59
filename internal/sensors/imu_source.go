// Package sensors provides access to the headset IMU hardware.
package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/visorlabs/headtrack/internal/config"
	"github.com/visorlabs/headtrack/internal/imu"
)

type imuSource struct {
	imu *mpu9250.MPU9250
}

// rangeConfig is the slice of the driver API used to program the sensor
// ranges at startup.
type rangeConfig interface {
	SetAccelRange(byte) error
	SetGyroRange(byte) error
}

// applyRanges programs both configured sensor ranges. The gyro range must
// match what the pose estimation uses to scale raw counts; the chip powers
// up at ±250°/s regardless of configuration.
func applyRanges(dev rangeConfig, cfg *config.Config) error {
	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return fmt.Errorf("IMU set accel range: %w", err)
	}
	log.Printf("IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	if err := dev.SetGyroRange(cfg.IMUGyroRange); err != nil {
		return fmt.Errorf("IMU set gyro range: %w", err)
	}
	log.Printf("IMU: gyroscope range set to %d (±%d°/s)", cfg.IMUGyroRange, []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	return nil
}

// NewIMUSource initializes the headset MPU9250 over SPI and returns a raw
// sample reader. Self-test and calibration run at startup; both are
// non-fatal since a headset with a slightly drifting gyro is still usable.
func NewIMUSource(cfg *config.Config) (imu.RawSource, error) {
	// Initialize periph host once.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("IMU CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("IMU SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	device, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("IMU device creation: %w", err)
	}

	if err := device.Init(); err != nil {
		return nil, fmt.Errorf("IMU initialization: %w", err)
	}

	if err := applyRanges(device, cfg); err != nil {
		return nil, err
	}

	if _, err := device.SelfTest(); err != nil {
		log.Printf("Warning: IMU self-test failed: %v", err)
	} else {
		log.Println("IMU self-test passed")
	}

	if err := device.Calibrate(); err != nil {
		log.Printf("Warning: IMU calibration failed: %v", err)
	} else {
		log.Println("IMU calibration complete")
	}

	return &imuSource{imu: device}, nil
}

// ReadRaw reads accelerometer and gyroscope counts from the IMU.
func (s *imuSource) ReadRaw() (imu.Raw, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel Z: %w", err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU gyro X: %w", err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU gyro Y: %w", err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU gyro Z: %w", err)
	}

	return imu.Raw{
		Ax: ax,
		Ay: ay,
		Az: az,
		Gx: gx,
		Gy: gy,
		Gz: gz,
	}, nil
}
