package main

import (
	"encoding/json"
	"fmt"

	coremqtt "github.com/heatflex/heatflex/core/mqtt"
)

// scheduleEnvelope mirrors the payload published on plant/<case>/schedule.
type scheduleEnvelope struct {
	CommandID string `json:"command_id"`
	coremqtt.Schedule
	Timestamp int64 `json:"timestamp"`
}

func parseSchedule(payload []byte) (scheduleEnvelope, error) {
	var env scheduleEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return scheduleEnvelope{}, fmt.Errorf("decode schedule: %w", err)
	}
	if env.CommandID == "" {
		return scheduleEnvelope{}, fmt.Errorf("schedule without command_id")
	}
	if env.CaseName == "" {
		return scheduleEnvelope{}, fmt.Errorf("schedule without case name")
	}
	return env, nil
}

func totalEnergyKWh(env scheduleEnvelope) float64 {
	var total float64
	for _, sp := range env.Setpoints {
		total += sp.PowerKW * env.IntervalHours
	}
	return total
}
