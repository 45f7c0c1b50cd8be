package apperror

import (
	"errors"
	"fmt"
)

// Failure classes of the matching pipeline. Handlers and the pipeline CLI
// branch on these with errors.Is; everything else is treated as internal.
var (
	// ErrExtractionUnavailable: the entity-recognition backend is down or
	// rejected the document. Ingestion of that document must stop before
	// any write happens.
	ErrExtractionUnavailable = errors.New("extraction unavailable")

	// ErrStoreUnavailable: the graph store is unreachable or a write/read
	// failed mid-flight. Both ingestion and retrieval fail fast on it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrGenerationFailure: the rationale generation call failed or timed
	// out. Callers degrade to a sentinel rationale instead of failing the
	// whole response.
	ErrGenerationFailure = errors.New("generation failure")
)

func ExtractionUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrExtractionUnavailable, err)
}

func StoreUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func GenerationFailure(err error) error {
	return fmt.Errorf("%w: %w", ErrGenerationFailure, err)
}
