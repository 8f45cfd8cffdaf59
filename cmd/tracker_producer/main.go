package main

import (
	"flag"
	"log"

	"github.com/visorlabs/headtrack/internal/app"
	"github.com/visorlabs/headtrack/internal/config"
)

func main() {
	configPath := flag.String("config", "./headtrack_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting headtrack pose producer (IMU → tracker → MQTT)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunTrackerProducer(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
