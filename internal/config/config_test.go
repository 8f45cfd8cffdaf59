package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headtrack.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `# headtrack test config
MQTT_BROKER = tcp://localhost:1883
TOPIC_POSE = headtrack/pose
TOPIC_POSE_PREDICTED = headtrack/pose/predicted
TOPIC_IMU_RAW = headtrack/imu/raw

IMU_SPI_DEVICE = /dev/spidev0.0
IMU_CS_PIN = 18
IMU_ACCEL_RANGE = 1
IMU_GYRO_RANGE = 2
IMU_SAMPLE_INTERVAL = 10

TRACKER_HISTORY_CAPACITY = 32
TRACKER_PREDICT_AHEAD_MS = 20
USE_MOCK_SOURCE = true

WEB_SERVER_PORT = 8080
DISPLAY_UPDATE_INTERVAL = 100
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "headtrack/pose", cfg.TopicPose)
	assert.Equal(t, "headtrack/pose/predicted", cfg.TopicPosePredicted)
	assert.Equal(t, byte(1), cfg.IMUAccelRange)
	assert.Equal(t, byte(2), cfg.IMUGyroRange)
	assert.Equal(t, 32, cfg.HistoryCapacity)
	assert.Equal(t, 20, cfg.PredictAheadMS)
	assert.Equal(t, int64(20_000_000), cfg.PredictAhead())
	assert.True(t, cfg.UseMockSource)
	assert.Equal(t, 100, cfg.DisplayUpdateInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"\nBOGUS_KEY = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, "MQTT_BROKER tcp://localhost:1883\n"))
	assert.Error(t, err)
}

func TestLoadValidatesRanges(t *testing.T) {
	cases := []string{
		"IMU_ACCEL_RANGE = 4",
		"IMU_GYRO_RANGE = -1",
		"TRACKER_HISTORY_CAPACITY = 1",
		"TRACKER_PREDICT_AHEAD_MS = -5",
		"USE_MOCK_SOURCE = maybe",
	}
	for _, line := range cases {
		_, err := Load(writeConfig(t, validConfig+"\n"+line+"\n"))
		assert.Error(t, err, "line %q must be rejected", line)
	}
}

func TestLoadRequiredFields(t *testing.T) {
	// Dropping any required key must fail validation.
	_, err := Load(writeConfig(t, "MQTT_BROKER = tcp://localhost:1883\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOPIC_POSE is required")
}
