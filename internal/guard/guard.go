// Package guard holds in-process request guards used by the HTTP layer and
// the game engine.
package guard

// Result is the outcome of a guard check.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked
}
