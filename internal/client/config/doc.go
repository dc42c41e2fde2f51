// Package config loads runtime configuration for the storykeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the story API
//	-d string   data directory for store.db and guest.db
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "data_dir": "/var/lib/storykeeper",
//	  "online_check_interval": "10s",
//	  "request_timeout": "30s",
//	  "log_level": "debug"
//	}
package config
