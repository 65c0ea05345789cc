// Package manifest lets frameworks declare the expected shape of their
// proxy contracts in HCL or YAML files and verify, at startup, that the
// registered Go contract types match those declarations.
//
// The Registry stores mappings between the contract names used in
// manifests (e.g. "Logger") and the actual compiled Go contract types,
// alongside the parsed, format-agnostic definitions from the manifests
// themselves. During application startup the registry is populated and
// then validated to ensure that the Go code and the public-facing
// manifests are perfectly in sync, shifting a wide class of dispatch
// errors from call time to startup.
//
// A manifest declares methods with their parameter and result types as
// type keywords (string, number, bool, any):
//
//	contract "Logger" {
//	  description = "Structured logging surface."
//
//	  method "Log" {
//	    params   = [string]
//	    fallible = true
//	  }
//	}
//
// Validated contract sets resolve by name to []reflect.Type, ready to feed
// dynproxy.Engine.NewProxy.
package manifest
