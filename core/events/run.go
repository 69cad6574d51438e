// Package events defines the run lifecycle events emitted on the event bus.
//
// Available event types:
//   - RunStarted: an optimization run was accepted
//   - RunCompleted: the solver finished and a result is available
//   - RunFailed: the pipeline returned an error
package events

import (
	"time"

	"github.com/heatflex/heatflex/core/engine"
)

// RunStarted is published when the service begins a run.
type RunStarted struct {
	CaseName string
	Mode     string
	Start    time.Time
	End      time.Time
}

// RunCompleted is published with the finished result.
type RunCompleted struct {
	Mode   string
	Result *engine.Result
}

// RunFailed is published when a run errors out.
type RunFailed struct {
	CaseName string
	Mode     string
	Err      error
}
