package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/visorlabs/headtrack/internal/config"
	imu_raw "github.com/visorlabs/headtrack/internal/imu"
	"github.com/visorlabs/headtrack/internal/tracker"
)

// printLimiter drops messages arriving faster than the configured interval,
// tracked per topic. A zero interval lets everything through. Pose topics
// publish at the IMU sample rate, far faster than a terminal is readable.
type printLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

func newPrintLimiter(interval time.Duration) *printLimiter {
	return &printLimiter{interval: interval, last: make(map[string]time.Time)}
}

func (l *printLimiter) allow(topic string, now time.Time) bool {
	if l.interval <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.last[topic]) < l.interval {
		return false
	}
	l.last[topic] = now
	return true
}

// RunConsoleMQTT subscribes to the pose and raw IMU topics and prints the
// messages, rate-limited per topic by CONSOLE_LOG_INTERVAL. It is the
// quickest way to eyeball tracker behavior.
func RunConsoleMQTT(cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	limiter := newPrintLimiter(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)

	// Subscribe to current pose
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if !limiter.allow(cfg.TopicPose, time.Now()) {
			return
		}
		var p tracker.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[POSE]  ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  q=(%.4f, %.4f, %.4f, %.4f)\n",
			p.Roll, p.Pitch, p.Yaw, p.QX, p.QY, p.QZ, p.QW,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Subscribe to predicted pose
	predToken := client.Subscribe(cfg.TopicPosePredicted, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if !limiter.allow(cfg.TopicPosePredicted, time.Now()) {
			return
		}
		var p tracker.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: predicted pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[PRED]  ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f  t=%d\n",
			p.Roll, p.Pitch, p.Yaw, p.Timestamp,
		)
	})
	predToken.Wait()
	if predToken.Error() != nil {
		return predToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPosePredicted)

	// Subscribe to raw IMU counts
	if cfg.TopicIMURaw != "" {
		imuToken := client.Subscribe(cfg.TopicIMURaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
			if !limiter.allow(cfg.TopicIMURaw, time.Now()) {
				return
			}
			var s imu_raw.Raw
			if err := json.Unmarshal(msg.Payload(), &s); err != nil {
				log.Printf("console: imu raw unmarshal error: %v", err)
				return
			}
			fmt.Printf(
				"[IMU ]  ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
				s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
			)
		})
		imuToken.Wait()
		if imuToken.Error() != nil {
			return imuToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicIMURaw)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
