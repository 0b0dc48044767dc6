// Package config provides user configuration management for scantag.
//
// This package manages a YAML-based configuration file that stores serial
// connection defaults, the last used port, the output file location and the
// live feed settings. The configuration follows OS-specific conventions for
// storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/scantag/config.yaml or $HOME/.config/scantag/config.yaml
//   - macOS: $HOME/.config/scantag/config.yaml
//   - Windows: %LOCALAPPDATA%\scantag\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.RememberPort("/dev/ttyUSB0")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # File Format
//
//	version: 1
//	serial:
//	  baud_rate: 9600
//	  read_timeout_ms: 1000
//	  poll_interval_ms: 100
//	  last_port: /dev/ttyUSB0
//	output:
//	  path: data.json
//	feed:
//	  enabled: false
//	  addr: 127.0.0.1:8765
//	  advertise: false
//
// Missing sections and zero values are filled with defaults on load.
// Command-line flags take precedence over file values.
package config
