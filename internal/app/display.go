package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/visorlabs/headtrack/internal/config"
	"github.com/visorlabs/headtrack/internal/tracker"
)

// displayData holds the latest poses for the debug display.
type displayData struct {
	mu sync.RWMutex

	pose          tracker.Pose
	havePose      bool
	predicted     tracker.Pose
	havePredicted bool
}

// RunDisplay drives the small SSD1306 debug display on the dev kit: the
// current pose on top, the predicted pose below it.
func RunDisplay(cfg *config.Config) error {
	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	subscribe := func(topic string, predicted bool) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p tracker.Pose
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("display: pose unmarshal error: %v", err)
				return
			}
			data.mu.Lock()
			if predicted {
				data.predicted = p
				data.havePredicted = true
			} else {
				data.pose = p
				data.havePose = true
			}
			data.mu.Unlock()
		})
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("display: subscribed to %s", topic)
		return nil
	}
	if err := subscribe(cfg.TopicPose, false); err != nil {
		return err
	}
	if err := subscribe(cfg.TopicPosePredicted, true); err != nil {
		return err
	}

	interval := cfg.DisplayUpdateInterval
	if interval <= 0 {
		interval = 100
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		pose := data.pose
		havePose := data.havePose
		predicted := data.predicted
		havePredicted := data.havePredicted
		data.mu.RUnlock()

		if err := updatePoseDisplay(dev, pose, havePose, predicted, havePredicted); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func blankImage() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return img
}

func updatePoseDisplay(dev *ssd1306.Dev, pose tracker.Pose, havePose bool, predicted tracker.Pose, havePredicted bool) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !havePose {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Head pose"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("R%6.1f P%6.1f", pose.Roll, pose.Pitch)))
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Y%6.1f", pose.Yaw)))

		if havePredicted {
			drawer.Dot = fixed.P(0, 45)
			drawer.DrawBytes([]byte(fmt.Sprintf("pR%5.1f pP%5.1f", predicted.Roll, predicted.Pitch)))
			drawer.Dot = fixed.P(0, 58)
			drawer.DrawBytes([]byte(fmt.Sprintf("pY%5.1f", predicted.Yaw)))
		}
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("headtrack"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("poses"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
