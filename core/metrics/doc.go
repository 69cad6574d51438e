package metrics

// Package metrics defines interfaces for recording optimization runs. Sinks
// like PromSink and InfluxSink under infra/metrics record run aggregates and
// solved schedules and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
