package main

import (
	"flag"
	"fmt"
	"time"
)

// Config holds parameters for the plant-controller simulator.
type Config struct {
	Broker     string
	ClientID   string
	AckLatency time.Duration
	DropRate   float64
	Verbose    bool
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", "plant-sim", "MQTT client ID")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "delay before acknowledging a schedule")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "probability of dropping an acknowledgment")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every received schedule")
	flag.Parse()
	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be in [0,1]")
	}
	return nil
}
