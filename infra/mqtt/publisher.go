package mqtt

import (
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/heatflex/heatflex/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Schedules  map[string]coremqtt.Schedule
	FailCases  map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Schedules:  make(map[string]coremqtt.Schedule),
		FailCases:  make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// PublishSchedule records the schedule or returns an error if configured to fail.
func (m *MockPublisher) PublishSchedule(s coremqtt.Schedule) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCases[s.CaseName] {
		return "", fmt.Errorf("publish failed")
	}
	m.Schedules[s.CaseName] = s
	commandID := fmt.Sprintf("cmd-%s", s.CaseName)
	m.AckResults[commandID] = true
	return commandID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[commandID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown command")
	}
	return ok, nil
}
