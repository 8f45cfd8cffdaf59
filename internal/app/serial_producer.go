package app

import (
	"bufio"
	"encoding/json"
	"log"
	"math"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/visorlabs/headtrack/internal/config"
	"github.com/visorlabs/headtrack/internal/rotation"
	"github.com/visorlabs/headtrack/internal/tracker"
)

// RunSerialProducer reads an external attitude sensor on a serial port,
// parses its $PRDID pitch/roll/heading sentences, feeds the head tracker,
// and publishes the resulting poses to MQTT. This covers dev kits whose
// tracker hardware streams attitude over USB-serial instead of SPI.
func RunSerialProducer(cfg *config.Config) error {
	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDSerial)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("serial producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open attitude sensor serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.AttitudeSerialPort,
		BaudRate:              uint(cfg.AttitudeBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("attitude serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	reader := bufio.NewReader(port)

	ht := tracker.New(cfg.HistoryCapacity, time.Duration(cfg.PredictAheadMS)*time.Millisecond)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("attitude sensor read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// NMEA sentences start with '$'
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy sensor or partial sentences; skip quietly
			continue
		}

		switch sentence.DataType() {
		case nmea.TypePRDID:
			m := sentence.(nmea.PRDID)

			// PRDID reports degrees; heading maps to yaw.
			yaw := m.Heading * math.Pi / 180
			pitch := m.Pitch * math.Pi / 180
			roll := m.Roll * math.Pi / 180

			now := time.Now().UnixNano()
			ht.Record(rotation.FromEuler(yaw, pitch, roll), now)

			pose := ht.Latest()
			if payload, err := json.Marshal(pose); err != nil {
				log.Printf("pose marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
				continue
			}

			predicted := ht.PredictedPose(now)
			if payload, err := json.Marshal(predicted); err != nil {
				log.Printf("predicted pose marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicPosePredicted, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose/predicted): %v", token.Error())
				continue
			}

		default:
			// ignore other sentence types
		}
	}
}
