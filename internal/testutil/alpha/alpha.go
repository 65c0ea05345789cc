// Package alpha provides a non-public contract fixture for accessibility
// tests; only its reflect.Type escapes the package.
package alpha

import "reflect"

type secretAPI struct {
	Whisper func(string) string
}

// Contract returns the reflect.Type of the package's unexported contract.
func Contract() reflect.Type {
	return reflect.TypeOf(secretAPI{})
}
