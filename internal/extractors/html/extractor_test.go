package html

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestFormats(t *testing.T) {
	extractor := New()
	formats := extractor.Formats()

	require.NotEmpty(t, formats)
	assert.Contains(t, formats, domain.FormatHTML)
	assert.Len(t, formats, 1)
}

func TestExtract_Success(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	input := "<html><head><title>Test Page</title></head><body><p>Hello World</p></body></html>"
	text, err := extractor.Extract(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestExtract_EmptyContent(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	text, err := extractor.Extract(ctx, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	text, err := extractor.Extract(ctx, bytes.NewReader([]byte{0xff, 0xfe}))
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentUnreadable)
	assert.Empty(t, text)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple paragraph",
			input:    "<p>Hello World</p>",
			expected: "Hello World",
		},
		{
			name:     "nested tags",
			input:    "<div><p><strong>Bold</strong> text</p></div>",
			expected: "Bold text",
		},
		{
			name:     "script removed",
			input:    "<p>Before</p><script>alert('evil');</script><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "style removed",
			input:    "<style>.foo { color: red; }</style><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "noscript removed",
			input:    "<p>Content</p><noscript>No JS fallback</noscript>",
			expected: "Content",
		},
		{
			name:     "head removed",
			input:    "<head><meta charset='utf-8'><title>Title</title></head><body>Content</body>",
			expected: "Content",
		},
		{
			name:     "br to newline",
			input:    "Line 1<br>Line 2<br/>Line 3",
			expected: "Line 1\nLine 2\nLine 3",
		},
		{
			name:     "block elements create newlines",
			input:    "<div>Block 1</div><div>Block 2</div>",
			expected: "Block 1\nBlock 2",
		},
		{
			name:     "HTML entities decoded",
			input:    "<p>&lt;tag&gt; &amp; &quot;quotes&quot;</p>",
			expected: "<tag> & \"quotes\"",
		},
		{
			name:     "comments removed",
			input:    "<p>Before</p><!-- comment --><p>After</p>",
			expected: "Before\nAfter",
		},
		{
			name:     "list items",
			input:    "<ul><li>Item 1</li><li>Item 2</li></ul>",
			expected: "Item 1\nItem 2",
		},
		{
			name:     "headings",
			input:    "<h1>Title</h1><h2>Subtitle</h2><p>Content</p>",
			expected: "Title\nSubtitle\nContent",
		},
		{
			name:     "links - text preserved",
			input:    `<a href="https://example.com">Click here</a>`,
			expected: "Click here",
		},
		{
			name:     "images removed",
			input:    `<p>See <img src="image.png" alt="Image"> here</p>`,
			expected: "See here",
		},
		{
			name:     "svg removed",
			input:    `<p>Before</p><svg width="100"><circle cx="50"/></svg><p>After</p>`,
			expected: "Before\nAfter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := stripHTML(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestExtract_ComplexHTML(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	complexHTML := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Complex Page</title>
    <style>
        body { font-family: Arial; }
    </style>
</head>
<body>
    <h1>Main Title</h1>
    <p>This is a <strong>paragraph</strong> with <em>emphasis</em>.</p>
    <ul>
        <li>First item</li>
        <li>Second item</li>
    </ul>
    <script>
        console.log('This should be removed');
    </script>
    <!-- This is a comment that should be removed -->
    <footer>
        <p>&copy; 2024 Example Corp</p>
    </footer>
</body>
</html>`

	text, err := extractor.Extract(ctx, strings.NewReader(complexHTML))
	require.NoError(t, err)

	assert.NotContains(t, text, "<strong>")
	assert.Contains(t, text, "paragraph")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "font-family")
	assert.NotContains(t, text, "<!--")
	assert.Contains(t, text, "Main Title")
	assert.Contains(t, text, "First item")
	assert.Contains(t, text, "2024 Example Corp")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func BenchmarkStripHTML(b *testing.B) {
	content := `<html>
<head><title>Test</title><style>body{}</style></head>
<body>
<h1>Heading</h1>
<p>Paragraph with <strong>bold</strong> and <em>italic</em>.</p>
<ul><li>Item 1</li><li>Item 2</li></ul>
<script>alert('test');</script>
</body>
</html>`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stripHTML(content)
	}
}
