// Package llm provides the wire representations exchanged with the remote
// answer service and returned by the dashboard's HTTP surface.
package llm

// ErrorResponse represents an error returned by an HTTP endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
