// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file, when present, is loaded into the process environment first so
// secrets such as the Discord token and Finnhub key can stay out of the YAML.
package config
