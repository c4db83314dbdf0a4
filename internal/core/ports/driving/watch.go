package driving

import "context"

// WatchService observes directories and keeps their documents ingested.
// Created and modified files of supported formats are (re-)ingested,
// deleted files have their documents removed.
type WatchService interface {
	// Watch blocks, processing filesystem events for the given directories
	// until the context is cancelled.
	Watch(ctx context.Context, dirs []string) error
}
