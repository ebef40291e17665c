// Package status renders user-facing status lines in the configured locale.
// Message wording is not part of any contract; tests should compare keys,
// not text.
package status
