// Package v1 holds the telemetry messages exchanged between boards and
// monitors.
package v1

//go:generate protoc --go_out=paths=source_relative:. telemetry.proto
