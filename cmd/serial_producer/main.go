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

	log.Println("starting headtrack serial attitude producer (serial → tracker → MQTT)")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.AttitudeSerialPort == "" {
		log.Fatal("ATTITUDE_SERIAL_PORT is required for the serial producer")
	}
	if cfg.AttitudeBaudRate == 0 {
		log.Fatal("ATTITUDE_BAUD_RATE is required for the serial producer")
	}

	if err := app.RunSerialProducer(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
