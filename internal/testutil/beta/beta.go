// Package beta mirrors testutil/alpha from a second package path, so tests
// can request non-public contracts from two different packages at once.
package beta

import "reflect"

type secretAPI struct {
	Shout func(string) string
}

// Contract returns the reflect.Type of the package's unexported contract.
func Contract() reflect.Type {
	return reflect.TypeOf(secretAPI{})
}
