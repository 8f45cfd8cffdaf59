package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/visorlabs/headtrack/internal/config"
	"github.com/visorlabs/headtrack/internal/device"
	"github.com/visorlabs/headtrack/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// poseState holds the latest poses seen on the MQTT topics. The two topics
// are tracked independently so predicted-only traffic never makes the
// snapshot API serve a zero-valued current pose.
type poseState struct {
	mu            sync.RWMutex
	last          tracker.Pose
	havePose      bool
	lastPredicted tracker.Pose
	havePredicted bool
}

func (s *poseState) set(p tracker.Pose, predicted bool) {
	s.mu.Lock()
	if predicted {
		s.lastPredicted = p
		s.havePredicted = true
	} else {
		s.last = p
		s.havePose = true
	}
	s.mu.Unlock()
}

func (s *poseState) get() (last, predicted tracker.Pose, havePose, havePredicted bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastPredicted, s.havePose, s.havePredicted
}

// RunWeb subscribes to the pose topics and serves them to browsers: a JSON
// snapshot API, a websocket push stream, and static viewer files.
func RunWeb(cfg *config.Config) error {
	state := &poseState{}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to pose topics and keep the latest of each
	subscribe := func(topic string, predicted bool) error {
		token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var p tracker.Pose
			if err := json.Unmarshal(msg.Payload(), &p); err != nil {
				log.Printf("MQTT payload unmarshal error: %v", err)
				return
			}
			state.set(p, predicted)
		})
		token.Wait()
		return token.Error()
	}
	if err := subscribe(cfg.TopicPose, false); err != nil {
		return err
	}
	if err := subscribe(cfg.TopicPosePredicted, true); err != nil {
		return err
	}
	log.Printf("subscribed to MQTT topics %s, %s", cfg.TopicPose, cfg.TopicPosePredicted)

	// 3) JSON API: latest pose pair
	http.HandleFunc("/api/pose", func(w http.ResponseWriter, r *http.Request) {
		last, predicted, havePose, _ := state.get()
		if !havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := struct {
			Pose      tracker.Pose `json:"pose"`
			Predicted tracker.Pose `json:"predicted"`
		}{last, predicted}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 4) Viewer parameters for the renderer side
	http.HandleFunc("/api/device", func(w http.ResponseWriter, r *http.Request) {
		params, err := device.ByProfile(cfg.DeviceProfile)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(params); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 5) Websocket push stream of predicted poses
	http.HandleFunc("/ws/pose", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("websocket client connected: %s", r.RemoteAddr)

		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			_, predicted, _, havePredicted := state.get()
			if !havePredicted {
				continue
			}
			if err := conn.WriteJSON(predicted); err != nil {
				log.Printf("websocket client %s gone: %v", r.RemoteAddr, err)
				return
			}
		}
	})

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
