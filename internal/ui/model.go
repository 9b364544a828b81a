package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/0xlemi/notefinder/internal/pitch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Constants for UI behavior
const (
	// How long a note needs to be present to be considered stable
	noteStabilityThreshold = 300 * time.Millisecond

	// Notes not seen for this long are forgotten
	noteHistoryTTL = 2 * time.Second

	tickInterval = 100 * time.Millisecond

	// Width of the input level meter in cells
	meterWidth = 30
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}

	// Natural note above each sharp's base, for the split color
	nextNatural = map[string]string{
		"C": "D", "D": "E", "F": "G", "G": "A", "A": "B",
	}
)

func noteBlock(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(color)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333"))
}

// renderNote draws naturals in one color and sharps split between the two
// neighbouring naturals
func renderNote(note pitch.Note) string {
	octave := fmt.Sprint(note.Octave)

	if !strings.HasSuffix(note.Name, "#") {
		return noteBlock(noteColors[note.Name]).Padding(2, 4).Render(note.Name + octave)
	}

	base := note.Name[:1]
	left := noteBlock(noteColors[base]).
		BorderTop(true).
		BorderBottom(true).
		BorderLeft(true).
		PaddingLeft(2).
		PaddingRight(1).
		PaddingTop(2).
		PaddingBottom(2)
	right := noteBlock(noteColors[nextNatural[base]]).
		BorderTop(true).
		BorderBottom(true).
		BorderRight(true).
		PaddingLeft(1).
		PaddingRight(2).
		PaddingTop(2).
		PaddingBottom(2)

	return lipgloss.JoinHorizontal(lipgloss.Top, left.Render(base), right.Render("#"+octave))
}

// Model represents the UI state
type Model struct {
	source       string
	currentNote  *pitch.Note
	stableNote   *pitch.Note
	notesHistory map[string]time.Time // When each note was first seen
	rms          float64
	db           float64
	hasLevel     bool
	finished     bool
	width        int
	height       int
	now          func() time.Time
}

// NewModel creates a new UI model. source names the audio input.
func NewModel(source string) Model {
	return Model{
		source:       source,
		notesHistory: make(map[string]time.Time),
		db:           -100,
		now:          time.Now,
	}
}

// TickMsg represents a timer tick
type TickMsg time.Time

// UpdateNoteMsg is a message to update the current note
type UpdateNoteMsg pitch.Note

// ClearNoteMsg clears the display when nothing was detected
type ClearNoteMsg struct{}

// UpdateAudioLevelMsg reports the input level
type UpdateAudioLevelMsg struct {
	RMS float64
	DB  float64
}

// SourceDoneMsg tells the UI the input has been fully analyzed
type SourceDoneMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		now := time.Time(msg)
		for name, firstSeen := range m.notesHistory {
			if now.Sub(firstSeen) > noteHistoryTTL {
				delete(m.notesHistory, name)
			}
		}
		return m, tick()

	case UpdateNoteMsg:
		note := pitch.Note(msg)
		m.currentNote = &note

		// A note becomes stable once it has been heard for a while
		name := note.String()
		firstSeen, seen := m.notesHistory[name]
		if !seen {
			firstSeen = m.now()
			m.notesHistory[name] = firstSeen
		}
		if m.now().Sub(firstSeen) >= noteStabilityThreshold {
			m.stableNote = &note
		}

	case ClearNoteMsg:
		m.currentNote = nil
		m.stableNote = nil
		clear(m.notesHistory)

	case UpdateAudioLevelMsg:
		m.rms = msg.RMS
		m.db = msg.DB
		m.hasLevel = true

	case SourceDoneMsg:
		m.finished = true
	}

	return m, nil
}

// displayed returns the note to show, preferring the stable one
func (m Model) displayed() *pitch.Note {
	if m.stableNote != nil {
		return m.stableNote
	}
	return m.currentNote
}

// levelMeter renders the dBFS level over a -60..0 dB scale
func (m Model) levelMeter() string {
	filled := int((m.db + 60) / 60 * meterWidth)
	filled = min(max(filled, 0), meterWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return meterStyle.Render(bar) + infoStyle.Render(fmt.Sprintf(" %6.1f dB", m.db))
}

// View renders the UI
func (m Model) View() string {
	s := titleStyle.Render("NoteFinder - Musical Note Detector")
	s += "\n"
	if m.source != "" {
		s += infoStyle.Render("Source: "+m.source) + "\n\n"
	}

	if note := m.displayed(); note != nil {
		s += renderNote(*note)
		s += "\n"
		s += infoStyle.Render(fmt.Sprintf("Frequency: %.2f Hz | Cents: %+.1f", note.Frequency, note.Cents))
	} else if m.finished {
		s += infoStyle.Render("End of input.")
	} else {
		s += infoStyle.Render("Listening for audio...")
	}

	if m.hasLevel {
		s += "\n\n" + m.levelMeter()
	}

	s += "\n\n"
	s += infoStyle.Render("Press q to quit")

	return s
}
