// Package config loads the rig configuration file.
//
// The file is optional YAML; missing keys keep their defaults and a missing
// file yields Default(). The CLI layers flags and RIG_* environment
// variables on top (see cmd).
//
// # Example
//
//	packages:
//	  - rig/internal/demo
//	searchCommands: true
//	stage: development
//	options:
//	  installers.HealthCheckNamesUnique: "false"
//	logging:
//	  level: debug
//	  format: json
//	tracing:
//	  enabled: true
//	  exporter: stdout
//	report:
//	  diagnostics: true
//	  lifecyclePhases: true
//	metrics:
//	  listen: 127.0.0.1:9464
//
// Validate reports every invalid field at once as ValidationErrors.
package config
