// Package config loads runtime configuration for the userdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with USERDESK_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the user service
//	-k string   API key
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "base_url": "https://reqres.in",
//	  "api_key": "reqres-free-v1",
//	  "database_path": "userdesk.db",
//	  "request_timeout": "10s",
//	  "notification_duration": "3s",
//	  "redirect_delay": "2s",
//	  "log_level": "info"
//	}
package config
