// Package config loads runtime configuration for the docvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "https://vault.example.com",
//	  "database_path": "docvault.db",
//	  "user_id": "6f1c2d2e-0b7a-4a8e-9d55-3f1f0b3b2a11",
//	  "request_timeout": "10s",
//	  "signed_url_ttl": "1h",
//	  "retry_count": 2
//	}
//
// The client does not read environment variables.
package config
