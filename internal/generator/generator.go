// Package generator defines the boundary to the external text-completion
// service and the providers that implement it.
package generator

import "context"

// Request carries everything the external service needs to produce a
// cell's next value: the step's rule and the cell's captured toroidal
// neighborhood.
type Request struct {
	Rule    string
	Current string
	North   string
	South   string
	West    string
	East    string
}

// Generator produces the next text value for a single cell. Implementations
// must be safe for concurrent use; the engine issues many overlapping calls.
// Any failure (refusal, malformed response, unreachable service) is returned
// as an error with a human-readable message, which the engine records on the
// affected cell.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
