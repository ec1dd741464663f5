// Package config handles configuration loading, parsing, and validation
// from a .env file, an optional config file and ACODE_-prefixed environment
// variables. It gives the rest of the application typed access to settings
// without exposing where they came from.
package config
