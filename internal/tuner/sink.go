package tuner

import (
	"fmt"
	"io"
)

// WriterSink prints a line whenever the detected note changes
type WriterSink struct {
	w    io.Writer
	last string
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Show prints the reading if the note differs from the previous one
func (s *WriterSink) Show(reading Reading) {
	name := reading.Note.String()
	if name == s.last {
		return
	}
	s.last = name

	fmt.Fprintf(s.w, "%-4s %8.2f Hz %+6.1f cents (confidence %.2f)\n",
		name,
		reading.Note.Frequency,
		reading.Note.Cents,
		reading.Estimate.Confidence,
	)
}

// Clear prints a separator once per silent stretch
func (s *WriterSink) Clear() {
	if s.last == "" {
		return
	}
	s.last = ""
	fmt.Fprintln(s.w, "--")
}

// Level is ignored in plain output
func (s *WriterSink) Level(rms, db float64) {}
