// Package utils provides small helpers shared by the command layer:
// path formatting, argument parsing and terminal detection.
package utils
