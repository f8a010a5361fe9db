// Package chanx provides context-aware operations and composition
// patterns (fan-in/fan-out, rate limiting, batching, zipping) for
// [github.com/ulugbekov/csp.Channel]. Every function here is ordinary
// consumer code: it coordinates [csp.Channel] values using [csp.Select],
// the same documented entry points any other application would use.
package chanx
