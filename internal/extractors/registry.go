package extractors

import (
	"sort"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
	"github.com/parchment-labs/passage-cli/internal/extractors/docx"
	"github.com/parchment-labs/passage-cli/internal/extractors/html"
	"github.com/parchment-labs/passage-cli/internal/extractors/markdown"
	"github.com/parchment-labs/passage-cli/internal/extractors/pdf"
	"github.com/parchment-labs/passage-cli/internal/extractors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches extraction by document format.
// Register at startup; lookups are read-only afterwards.
type Registry struct {
	byFormat map[domain.Format]driven.Extractor
}

// New creates a registry holding the given extractors.
func New(exts ...driven.Extractor) *Registry {
	r := &Registry{
		byFormat: make(map[domain.Format]driven.Extractor),
	}
	for _, ext := range exts {
		r.Register(ext)
	}
	return r
}

// NewDefault creates a registry with every built-in extractor.
func NewDefault() *Registry {
	return New(
		plaintext.New(),
		markdown.New(),
		html.New(),
		pdf.New(),
		docx.New(),
	)
}

// Register adds an extractor for each format it reports.
// A later registration for the same format wins.
func (r *Registry) Register(ext driven.Extractor) {
	for _, format := range ext.Formats() {
		r.byFormat[format] = ext
	}
}

// ForFormat returns the extractor registered for the format.
func (r *Registry) ForFormat(format domain.Format) (driven.Extractor, bool) {
	ext, ok := r.byFormat[format]
	return ext, ok
}

// Formats returns every registered format in stable order.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.byFormat))
	for format := range r.byFormat {
		formats = append(formats, format)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
