// Package utils holds small formatting helpers shared across packages.
//
// Example Usage:
//
//	utils.FormatHMS(16 * time.Second) // "00:00:16"
package utils
