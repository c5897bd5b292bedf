// Package analyzer holds what every walk over a set of files shares: the
// analyzer contract and progress reporting carried on a context.
package analyzer

import "context"

// FileAnalyzer walks a set of files into a result of type T.
type FileAnalyzer[T any] interface {
	// Analyze walks files. A tracker on ctx is told about each file as it
	// finishes.
	Analyze(ctx context.Context, files []string) (T, error)

	Close()
}
