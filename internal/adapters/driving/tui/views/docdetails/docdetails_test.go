package docdetails

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/passage-cli/internal/adapters/driving/tui/messages"
	"github.com/parchment-labs/passage-cli/internal/adapters/driving/tui/styles"
	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()

	view := NewView(s)

	require.NotNil(t, view)
	assert.False(t, view.ready)
	assert.Nil(t, view.details)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.Nil(t, view.styles)
}

func TestView_SetDetails(t *testing.T) {
	view := NewView(nil)

	details := &driving.DocumentDetails{
		ID:            "doc-1",
		Name:          "Test Document",
		Format:        domain.FormatMarkdown,
		ChunkCount:    5,
		ContentLength: 1024,
	}
	view.SetDetails(details)

	assert.Equal(t, "doc-1", view.details.ID)
	assert.Equal(t, "Test Document", view.details.Name)
	assert.Equal(t, 0, view.scrollOffset)
	assert.NoError(t, view.err)
}

func TestView_SetDetails_ResetsScroll(t *testing.T) {
	view := NewView(nil)
	view.scrollOffset = 7

	view.SetDetails(&driving.DocumentDetails{ID: "doc-2"})

	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_SetError(t *testing.T) {
	view := NewView(nil)

	err := errors.New("test error")
	view.SetError(err)

	assert.Error(t, view.err)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil)

	cmd := view.Init()

	assert.Nil(t, cmd)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	msg := tea.WindowSizeMsg{Width: 80, Height: 24}
	updated, cmd := view.Update(msg)

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 80, view.width)
	assert.Equal(t, 24, view.height)
}

func TestView_Update_KeyMsg_Back(t *testing.T) {
	view := NewView(nil)

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	_, cmd := view.Update(msg)

	require.NotNil(t, cmd)
	result := cmd()
	changed, ok := result.(messages.ViewChanged)
	assert.True(t, ok)
	assert.Equal(t, messages.ViewDocuments, changed.View)
}

func TestView_Update_KeyMsg_ScrollUp(t *testing.T) {
	view := NewView(nil)
	view.scrollOffset = 5

	msg := tea.KeyMsg{Type: tea.KeyUp}
	view.Update(msg)
	assert.Equal(t, 4, view.scrollOffset)

	// Test k key
	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	view.Update(msg)
	assert.Equal(t, 3, view.scrollOffset)

	// Test boundary
	view.scrollOffset = 0
	msg = tea.KeyMsg{Type: tea.KeyUp}
	view.Update(msg)
	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_Update_KeyMsg_ScrollDown(t *testing.T) {
	view := NewView(nil)
	view.height = 7
	view.details = &driving.DocumentDetails{
		ID:         "doc-1",
		Name:       "Test",
		Format:     domain.FormatText,
		ChunkCount: 3,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	view.scrollOffset = 0

	msg := tea.KeyMsg{Type: tea.KeyDown}
	view.Update(msg)
	assert.Equal(t, 1, view.scrollOffset)

	// Test j key
	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	view.Update(msg)
	assert.Equal(t, 2, view.scrollOffset)
}

func TestView_Update_KeyMsg_ScrollDown_AtMax(t *testing.T) {
	view := NewView(nil)
	view.height = 24
	view.details = &driving.DocumentDetails{ID: "doc-1"}
	view.scrollOffset = 0

	// All fields fit on screen, so scrolling down is a no-op
	msg := tea.KeyMsg{Type: tea.KeyDown}
	view.Update(msg)

	assert.Equal(t, 0, view.scrollOffset)
}

func TestView_Update_ErrorOccurred(t *testing.T) {
	view := NewView(nil)

	msg := messages.ErrorOccurred{Err: errors.New("test error")}
	view.Update(msg)

	assert.Error(t, view.err)
}

func TestView_View_NoDetails(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 24
	view.ready = true
	view.details = nil

	output := view.View()

	assert.Contains(t, output, "Document Details")
	assert.Contains(t, output, "No document details available")
}

func TestView_View_WithDetails(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 24
	view.ready = true
	view.details = &driving.DocumentDetails{
		ID:            "doc-1",
		Name:          "Test Document",
		Format:        domain.FormatMarkdown,
		ChunkCount:    5,
		ContentLength: 2048,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	output := view.View()

	assert.Contains(t, output, "Test Document")
	assert.Contains(t, output, "doc-1")
	assert.Contains(t, output, "Format:")
	assert.Contains(t, output, "characters")
	assert.Contains(t, output, "Created")
	assert.Contains(t, output, "Updated")
}

func TestView_View_ZeroTimestampsOmitted(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 24
	view.ready = true
	view.details = &driving.DocumentDetails{
		ID:         "doc-1",
		Name:       "Test",
		Format:     domain.FormatText,
		ChunkCount: 1,
	}

	output := view.View()

	assert.NotContains(t, output, "Created")
	assert.NotContains(t, output, "Updated")
}

func TestView_View_Error(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 24
	view.ready = true
	view.err = errors.New("failed to load details")

	output := view.View()

	assert.Contains(t, output, "Error")
	assert.Contains(t, output, "failed to load details")
}

func TestView_View_HelpFooter(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 24
	view.ready = true
	view.details = &driving.DocumentDetails{ID: "doc-1", Name: "Test"}

	output := view.View()

	assert.Contains(t, output, "scroll")
	assert.Contains(t, output, "back")
}

func TestView_View_ScrollIndicator(t *testing.T) {
	s := styles.DefaultStyles()
	view := NewView(s)
	view.width = 80
	view.height = 8 // 2 visible lines with 6 reserved
	view.ready = true
	view.details = &driving.DocumentDetails{
		ID:         "doc-1",
		Name:       "Test",
		Format:     domain.FormatMarkdown,
		ChunkCount: 4,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	output := view.View()

	assert.Contains(t, output, "of 7", "Should show total line count when content overflows")
}

func TestView_BuildContent_NilDetails(t *testing.T) {
	view := NewView(nil)
	view.details = nil

	lines := view.buildContent()

	assert.Nil(t, lines)
}

func TestView_BuildContent_FieldCount(t *testing.T) {
	view := NewView(nil)
	view.details = &driving.DocumentDetails{
		ID:         "doc-1",
		Name:       "Test",
		Format:     domain.FormatText,
		ChunkCount: 2,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	lines := view.buildContent()

	// ID, Name, Format, Chunks, Content, Created, Updated
	assert.Len(t, lines, 7)
}

func TestView_BuildContent_NoTimestamps(t *testing.T) {
	view := NewView(nil)
	view.details = &driving.DocumentDetails{
		ID:     "doc-1",
		Name:   "Test",
		Format: domain.FormatText,
	}

	lines := view.buildContent()

	assert.Len(t, lines, 5)
}

func TestView_FormatField(t *testing.T) {
	view := NewView(nil)

	line := view.formatField("Name", "Test Document")

	assert.Contains(t, line, "Name:")
	assert.Contains(t, line, "Test Document")
}

func TestView_VisibleLines(t *testing.T) {
	view := NewView(nil)
	view.height = 24

	assert.Equal(t, 18, view.visibleLines())

	view.height = 3
	assert.Equal(t, 1, view.visibleLines())
}

func TestView_MaxScrollOffset_ContentFits(t *testing.T) {
	view := NewView(nil)
	view.height = 24
	view.details = &driving.DocumentDetails{ID: "doc-1"}

	assert.Equal(t, 0, view.maxScrollOffset())
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil)

	view.SetDimensions(100, 50)

	assert.Equal(t, 100, view.width)
	assert.Equal(t, 50, view.height)
	assert.True(t, view.ready)
}

func TestView_Details_Getter(t *testing.T) {
	view := NewView(nil)
	details := &driving.DocumentDetails{ID: "doc-1"}
	view.details = details

	assert.Equal(t, details, view.Details())
}

func TestView_Err_Getter(t *testing.T) {
	view := NewView(nil)
	testErr := errors.New("test error")
	view.err = testErr

	assert.Equal(t, testErr, view.Err())
}
