package llmpipe

import "context"

// Solver turns one trimmed input line into one answer line.
// Input errors and *RemoteError values are reported to the consumer as "Error: " lines.
type Solver interface {
	Solve(ctx context.Context, line string) (string, error)
	// Name identifies the variant in logs.
	Name() string
}
