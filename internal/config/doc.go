// Package config loads, normalizes, and validates jira CLI configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JIRA_SERVER and JIRA_API_TOKEN. Connection credentials are validated
// separately through ValidateCredentials so commands that never reach the
// tracker keep working without them.
//
// Always obtain settings through this package so downstream code receives
// sanitized server addresses, canonical enum values, and clear validation errors.
package config
