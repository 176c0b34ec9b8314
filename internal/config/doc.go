// Package config provides configuration parsing for the reactive CLI.
//
// The configuration is stored in reactive.json, reactive.yaml or
// reactive.yml. This package handles loading, saving, and validating
// configuration. Keys a file leaves out keep their defaults.
//
// # Configuration File Structure
//
//	log:
//	  level: debug
//	  format: json
//	metrics:
//	  enabled: true
//	  namespace: reactive
//	tracing:
//	  enabled: false
//	inspect:
//	  addr: localhost:7070
//	  eventBuffer: 256
//	loop:
//	  queueSize: 64
//	  tick: 500ms
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspect:", cfg.Inspect.Addr)
package config
