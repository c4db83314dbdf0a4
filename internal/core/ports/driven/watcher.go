package driven

import (
	"context"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
)

// DirectoryWatcher observes directories for document file changes.
// Created and modified files arrive with their content read; deleted
// files carry only the name of what disappeared.
type DirectoryWatcher interface {
	// Watch streams file changes under the given directories until the
	// context is cancelled. The channel closes when watching stops.
	// Unsupported formats and hidden files are filtered out before
	// they reach the channel.
	Watch(ctx context.Context, dirs []string) (<-chan domain.RawDocumentChange, error)

	// Close releases resources. Watch cannot be called afterwards.
	Close() error
}
