// Package daemon runs the pipeline periodically in watch mode, reloads the
// configuration when its file changes and optionally serves Prometheus metrics.
package daemon
