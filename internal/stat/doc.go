// Package stat records named durations and counters for bootstrap phases.
//
// Stats is passive: the orchestrator starts and stops timers around each
// phase, and components bump counters (scanned values, installed
// extensions). Timers with the same name accumulate, so a phase that is
// entered twice (initialization and run both count towards the total
// bootstrap time) reports the sum.
//
// Collected values can be exported to Prometheus by registering the Stats
// value with a prometheus.Registerer; it implements prometheus.Collector and
// reports constant gauges at scrape time.
package stat
