// Package utils provides small generic helpers shared by the CLI and features.
package utils
