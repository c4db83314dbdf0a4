// Package tui provides an interactive terminal user interface for passage.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query provides retrieval and answer generation.
	Query driving.QueryService

	// Document manages ingested documents.
	Document driving.DocumentService

	// Ingest runs the chunk, embed, and index pipeline.
	Ingest driving.IngestOrchestrator

	// Settings manages application settings.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	query driving.QueryService,
	document driving.DocumentService,
	ingest driving.IngestOrchestrator,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Query:    query,
		Document: document,
		Ingest:   ingest,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
