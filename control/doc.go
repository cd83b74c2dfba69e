// Package control
// Author: momentics <momentics@gmail.com>
//
// Hot-reload, runtime metrics, configuration control, and debug introspection
// layer for the pollwake library.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads, atomic updates, and JSON file loading
//   - Config file watching with reload listeners
//   - Counter telemetry with JSON snapshot export
//   - Debug hooks and probe registration
package control
