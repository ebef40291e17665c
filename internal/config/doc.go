// Package config loads glaze settings from YAML.
//
// A document is decoded over Default, checked against the embedded CUE schema
// (unknown keys and out-of-range values are rejected there), and finally
// checked semantically by Validate. Command-line flags override the result.
package config
