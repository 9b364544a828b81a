package ui

import (
	"time"

	"github.com/0xlemi/notefinder/internal/tuner"
	tea "github.com/charmbracelet/bubbletea"
)

// Rate limits for messages sent to the program
const (
	levelInterval = 200 * time.Millisecond
	noteInterval  = 80 * time.Millisecond // prevents flicker
)

// sender is the part of *tea.Program the sink needs
type sender interface {
	Send(msg tea.Msg)
}

// ProgramSink forwards loop output to a running bubbletea program
type ProgramSink struct {
	program   sender
	lastLevel time.Time
	lastNote  time.Time
	now       func() time.Time
}

// NewProgramSink creates a sink for p
func NewProgramSink(p *tea.Program) *ProgramSink {
	return &ProgramSink{program: p, now: time.Now}
}

// Show sends the note, at most once per noteInterval
func (s *ProgramSink) Show(reading tuner.Reading) {
	now := s.now()
	if now.Sub(s.lastNote) < noteInterval {
		return
	}
	s.lastNote = now
	s.program.Send(UpdateNoteMsg(reading.Note))
}

// Clear removes the displayed note
func (s *ProgramSink) Clear() {
	s.program.Send(ClearNoteMsg{})
}

// Level sends the input level, at most once per levelInterval
func (s *ProgramSink) Level(rms, db float64) {
	now := s.now()
	if now.Sub(s.lastLevel) < levelInterval {
		return
	}
	s.lastLevel = now
	s.program.Send(UpdateAudioLevelMsg{RMS: rms, DB: db})
}

// Done tells the program that the source is exhausted
func (s *ProgramSink) Done() {
	s.program.Send(SourceDoneMsg{})
}
