package port

import "context"

// DocumentSource enumerates the label documents of one archive release.
// Each document is delivered at most once per run; the orchestrator owns
// the returned bytes only for the duration of a single parse.
type DocumentSource interface {
	// Documents lists stable identifiers (file paths) for every document.
	Documents(ctx context.Context) ([]string, error)
	// Load reads the raw bytes of a single document.
	Load(ctx context.Context, id string) ([]byte, error)
}
