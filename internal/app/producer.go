package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/visorlabs/headtrack/internal/config"
	"github.com/visorlabs/headtrack/internal/device"
	imu_raw "github.com/visorlabs/headtrack/internal/imu"
	"github.com/visorlabs/headtrack/internal/rotation"
	"github.com/visorlabs/headtrack/internal/sensors"
	"github.com/visorlabs/headtrack/internal/tracker"
)

// RunTrackerProducer reads the headset IMU (or the mock source), feeds the
// head tracker, and publishes the current and latency-compensated poses to
// MQTT once per sample tick.
func RunTrackerProducer(cfg *config.Config) error {
	log.Println("starting headtrack pose producer")

	params, err := device.ByProfile(cfg.DeviceProfile)
	if err != nil {
		return err
	}
	log.Printf("viewer profile: %s %s (inter-lens %.3fm)", params.Vendor, params.Model, params.InterLensDistance)

	// --- Choose sample source (mock vs real IMU) ---
	var mockSrc tracker.Source
	var imuSrc imu_raw.RawSource

	if cfg.UseMockSource {
		log.Println("using mock rotation source")
		mockSrc = tracker.NewMockSource()
	} else {
		imuSrc, err = sensors.NewIMUSource(cfg)
		if err != nil {
			return err
		}
		log.Println("headset IMU initialized")
	}

	// --- Connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Printf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting sample loop")

	ht := tracker.New(cfg.HistoryCapacity, time.Duration(cfg.PredictAheadMS)*time.Millisecond)
	gyroScale := tracker.GyroScaleForRange(cfg.IMUGyroRange)

	// Track previous rotation and tick time for gyro integration
	prev := rotation.Identity()
	var lastTickTime time.Time

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		var deltaTime float64
		if lastTickTime.IsZero() {
			deltaTime = float64(cfg.IMUSampleInterval) / 1000.0
		} else {
			deltaTime = t.Sub(lastTickTime).Seconds()
		}
		lastTickTime = t

		// 1) Produce a rotation sample and record it
		var raw imu_raw.Raw
		if cfg.UseMockSource {
			q, ts, err := mockSrc.Next()
			if err != nil {
				log.Printf("error from mock rotation source: %v", err)
				continue
			}
			prev = q
			ht.Record(q, ts)
		} else {
			raw, err = imuSrc.ReadRaw()
			if err != nil {
				log.Printf("error reading IMU: %v", err)
				continue
			}
			q := tracker.EstimateRotation(raw, prev, deltaTime, gyroScale)
			prev = q
			ht.Record(q, t.UnixNano())
		}

		// 2) Publish current pose
		pose := ht.Latest()
		if payload, err := json.Marshal(pose); err != nil {
			log.Printf("json marshal error (pose): %v", err)
		} else {
			if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
				continue
			}
		}

		// 3) Publish predicted pose for the upcoming display frame.
		// Until the history is primed this is the identity pose.
		predicted := ht.PredictedPose(t.UnixNano())
		if payload, err := json.Marshal(predicted); err != nil {
			log.Printf("json marshal error (pose/predicted): %v", err)
		} else {
			if token := client.Publish(cfg.TopicPosePredicted, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose/predicted): %v", token.Error())
				continue
			}
		}

		// 4) Publish raw IMU counts for debugging
		if !cfg.UseMockSource && cfg.TopicIMURaw != "" {
			if payload, err := json.Marshal(raw); err != nil {
				log.Printf("imu raw marshal error: %v", err)
			} else {
				client.Publish(cfg.TopicIMURaw, 0, true, payload)
			}
		}

		log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | predicted R=%.2f P=%.2f Y=%.2f | primed=%t",
			t.Format(time.RFC3339),
			pose.Roll, pose.Pitch, pose.Yaw,
			predicted.Roll, predicted.Pitch, predicted.Yaw,
			ht.Ready(),
		)
	}
	return nil
}
