// Package config loads sqlwrap settings from YAML with environment overrides.
//
// Precedence, lowest to highest: built-in defaults, the YAML file,
// SQLWRAP_* environment variables, then command-line flags (applied by the
// cli package).
//
// Unknown YAML keys are rejected so typos fail loudly.
package config
