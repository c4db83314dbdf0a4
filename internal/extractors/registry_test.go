package extractors

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

// stubExtractor is a minimal extractor for registry tests.
type stubExtractor struct {
	formats []domain.Format
	text    string
}

func (s *stubExtractor) Formats() []domain.Format { return s.formats }

func (s *stubExtractor) Extract(_ context.Context, _ io.Reader) (string, error) {
	return s.text, nil
}

func TestNewDefault(t *testing.T) {
	registry := NewDefault()
	require.NotNil(t, registry)

	for _, format := range []domain.Format{
		domain.FormatText,
		domain.FormatMarkdown,
		domain.FormatHTML,
		domain.FormatPDF,
		domain.FormatDocx,
	} {
		ext, ok := registry.ForFormat(format)
		assert.True(t, ok, "format %s should have an extractor", format)
		assert.NotNil(t, ext)
	}
}

func TestForFormat_Unknown(t *testing.T) {
	registry := New()

	ext, ok := registry.ForFormat(domain.FormatPDF)
	assert.False(t, ok)
	assert.Nil(t, ext)
}

func TestRegister_LaterWins(t *testing.T) {
	first := &stubExtractor{formats: []domain.Format{domain.FormatText}, text: "first"}
	second := &stubExtractor{formats: []domain.Format{domain.FormatText}, text: "second"}

	registry := New(first, second)

	ext, ok := registry.ForFormat(domain.FormatText)
	require.True(t, ok)

	text, err := ext.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestRegister_MultipleFormats(t *testing.T) {
	stub := &stubExtractor{
		formats: []domain.Format{domain.FormatText, domain.FormatMarkdown},
		text:    "shared",
	}

	registry := New(stub)

	for _, format := range stub.formats {
		ext, ok := registry.ForFormat(format)
		require.True(t, ok)
		assert.Equal(t, stub, ext)
	}
}

func TestFormats_Sorted(t *testing.T) {
	registry := NewDefault()
	formats := registry.Formats()

	require.Len(t, formats, 5)
	for i := 1; i < len(formats); i++ {
		assert.Less(t, string(formats[i-1]), string(formats[i]))
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.ExtractorRegistry = (*Registry)(nil)
}
