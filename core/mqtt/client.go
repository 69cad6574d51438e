package mqtt

import "time"

// Setpoint is one interval of a published schedule.
type Setpoint struct {
	Time     time.Time `json:"time"`
	PowerKW  float64   `json:"power_kw"`
	HeaterOn bool      `json:"heater_on"`
}

// Schedule is the dispatch payload pushed to the plant controller.
type Schedule struct {
	RunID         string     `json:"run_id"`
	CaseName      string     `json:"case"`
	IntervalHours float64    `json:"interval_hours"`
	Setpoints     []Setpoint `json:"setpoints"`
}

// Publisher represents an MQTT client capable of pushing solved schedules and
// waiting for acknowledgments from the plant controller.
type Publisher interface {
	// PublishSchedule sends the schedule to the case's topic and returns the
	// command identifier used to track the acknowledgment.
	PublishSchedule(s Schedule) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
