// Package ingest provides the document ingestion view for the TUI.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parchment-labs/passage-cli/internal/adapters/driving/tui/messages"
	"github.com/parchment-labs/passage-cli/internal/adapters/driving/tui/styles"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

// Step tracks the current step in the ingest flow.
type Step int

const (
	StepEnterPath Step = iota
	StepIngesting
	StepComplete
)

// Key constants.
const (
	keyEnter = "enter"
)

// View is the document ingestion view.
type View struct {
	styles        *styles.Styles
	ingestService driving.IngestOrchestrator

	// Flow state
	step      Step
	pathInput textinput.Model

	// Result
	documentID string
	chunkCount int
	replaced   bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new ingest view.
func NewView(s *styles.Styles, ingestService driving.IngestOrchestrator) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	pathInput := textinput.New()
	pathInput.Placeholder = "Path to a text, markdown or HTML file"
	pathInput.CharLimit = 512
	pathInput.Width = 60

	return &View{
		styles:        s,
		ingestService: ingestService,
		step:          StepEnterPath,
		pathInput:     pathInput,
	}
}

// Init initialises the view and focuses the path input.
func (v *View) Init() tea.Cmd {
	return v.pathInput.Focus()
}

// Update handles messages for the ingest view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case messages.IngestCompleted:
		if msg.Err != nil {
			v.err = msg.Err
			v.step = StepEnterPath
			cmd := v.pathInput.Focus()
			return v, cmd
		}
		v.documentID = msg.DocumentID
		v.chunkCount = msg.ChunkCount
		v.replaced = msg.Replaced
		v.err = nil
		v.step = StepComplete
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current step.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		switch v.step {
		case StepEnterPath, StepComplete:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case StepIngesting:
			// Ingestion runs to completion once started
			return v, nil
		}
	}

	switch v.step {
	case StepEnterPath:
		return v.handlePathInput(msg)
	case StepIngesting:
		// Waiting for the ingest command - no key handling needed
		return v, nil
	case StepComplete:
		switch msg.String() {
		case keyEnter:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case "n":
			// Ingest another file
			v.Reset()
			cmd := v.pathInput.Focus()
			return v, cmd
		}
	}

	return v, nil
}

func (v *View) handlePathInput(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == keyEnter {
		path := strings.TrimSpace(v.pathInput.Value())
		if path == "" {
			v.err = fmt.Errorf("file path is required")
			return v, nil
		}
		v.err = nil
		v.step = StepIngesting
		v.pathInput.Blur()
		return v, v.ingestFile(path)
	}

	var cmd tea.Cmd
	v.pathInput, cmd = v.pathInput.Update(msg)
	return v, cmd
}

// ingestFile returns a command that ingests the file at the given path.
func (v *View) ingestFile(path string) tea.Cmd {
	return func() tea.Msg {
		if v.ingestService == nil {
			return messages.IngestCompleted{Err: fmt.Errorf("ingest service not available")}
		}
		report, err := v.ingestService.IngestFile(context.Background(), path)
		if err != nil {
			return messages.IngestCompleted{Err: err}
		}
		return messages.IngestCompleted{
			DocumentID: report.DocumentID,
			ChunkCount: report.ChunkCount,
			Replaced:   report.Replaced,
		}
	}
}

// View renders the ingest view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Ingest Document"))
	b.WriteString("\n\n")

	b.WriteString(v.renderProgress())
	b.WriteString("\n\n")

	// Error display
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	switch v.step {
	case StepEnterPath:
		b.WriteString(v.renderPathInput())
	case StepIngesting:
		b.WriteString(v.renderIngesting())
	case StepComplete:
		b.WriteString(v.renderComplete())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderProgress() string {
	stepNames := []string{"File", "Ingest", "Done"}
	currentIdx := 0
	switch v.step {
	case StepEnterPath:
		currentIdx = 0
	case StepIngesting:
		currentIdx = 1
	case StepComplete:
		currentIdx = 2
	}

	progress := ""
	for i, name := range stepNames {
		if i > 0 {
			progress += " > "
		}
		if i == currentIdx {
			progress += v.styles.Selected.Render(name)
		} else if i < currentIdx {
			progress += v.styles.Success.Render(name)
		} else {
			progress += v.styles.Muted.Render(name)
		}
	}
	return progress
}

func (v *View) renderPathInput() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select a file to ingest:"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("The file is chunked, embedded and indexed for search."))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("File path:"))
	b.WriteString("\n")
	b.WriteString(v.pathInput.View())
	b.WriteString("\n")

	return b.String()
}

func (v *View) renderIngesting() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Ingesting..."))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Normal.Render("Chunking and indexing the document."))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("This may take a moment for large files."))
	b.WriteString("\n")

	return b.String()
}

func (v *View) renderComplete() string {
	var b strings.Builder

	title := "Document Ingested!"
	if v.replaced {
		title = "Document Updated!"
	}
	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("ID: %s\n", v.documentID))
	b.WriteString(fmt.Sprintf("Chunks: %d\n", v.chunkCount))

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.step {
	case StepEnterPath:
		return v.styles.Help.Render("[enter] ingest  [esc] back")
	case StepIngesting:
		return v.styles.Help.Render("ingesting...")
	case StepComplete:
		return v.styles.Help.Render("[n] ingest another  [enter] done  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.step = StepEnterPath
	v.pathInput.SetValue("")
	v.documentID = ""
	v.chunkCount = 0
	v.replaced = false
	v.err = nil
}

// CurrentStep returns the current flow step.
func (v *View) CurrentStep() Step {
	return v.step
}

// Path returns the current path input value.
func (v *View) Path() string {
	return v.pathInput.Value()
}

// DocumentID returns the ingested document ID, if complete.
func (v *View) DocumentID() string {
	return v.documentID
}

// ChunkCount returns the number of chunks produced, if complete.
func (v *View) ChunkCount() int {
	return v.chunkCount
}

// Replaced reports whether the ingest replaced an existing document.
func (v *View) Replaced() bool {
	return v.replaced
}

// Err returns the current error state.
func (v *View) Err() error {
	return v.err
}
