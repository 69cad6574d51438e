// Package infra contains technical adapters around the scheduling core: the
// MQTT schedule publisher, the metrics sinks and the savings history store.
// These packages should depend only on the interfaces defined in the core
// packages.
package infra
