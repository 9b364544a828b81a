package pitch

import (
	"fmt"
	"math"
)

// UnknownNote is the note name for frequencies that cannot be mapped
const UnknownNote = "unknown"

// referenceOctave is the octave covered by the note table (C4..B4)
const referenceOctave = 4

// NoteEntry is one row of the reference note table
type NoteEntry struct {
	Name      string
	Frequency float64 // Hz
}

// noteTable covers one equal-tempered octave from C4, ascending
var noteTable = [12]NoteEntry{
	{"C", 261.63},
	{"C#", 277.18},
	{"D", 293.66},
	{"D#", 311.13},
	{"E", 329.63},
	{"F", 349.23},
	{"F#", 369.99},
	{"G", 392.00},
	{"G#", 415.30},
	{"A", 440.00},
	{"A#", 466.16},
	{"B", 493.88},
}

// Notes returns a copy of the reference note table
func Notes() []NoteEntry {
	notes := make([]NoteEntry, len(noteTable))
	copy(notes, noteTable[:])
	return notes
}

// Note represents a musical note
type Note struct {
	Name      string  // e.g., "A", "A#", "B", or UnknownNote
	Octave    int     // e.g., 4 for middle C (C4)
	Frequency float64 // Frequency in Hz that was mapped
	Cents     float64 // Cents deviation from the note (-50 to +50)
}

// Known reports whether the frequency resolved to a note
func (n Note) Known() bool {
	return n.Name != UnknownNote && n.Name != ""
}

func (n Note) String() string {
	if !n.Known() {
		return UnknownNote
	}
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// Mapper converts a frequency to the nearest note
type Mapper interface {
	Map(frequency float64) Note
}

// Policy names a note mapping strategy
type Policy string

const (
	// PolicyLog rounds the distance from C4 in semitones
	PolicyLog Policy = "log"
	// PolicyFold folds into the reference octave and scans the table
	PolicyFold Policy = "fold"
)

// NewMapper returns the mapper for a policy
func NewMapper(policy Policy) (Mapper, error) {
	switch policy {
	case PolicyLog, "":
		return LogMapper{}, nil
	case PolicyFold:
		return FoldMapper{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

func unknown(frequency float64) Note {
	return Note{Name: UnknownNote, Frequency: frequency}
}

// mappable rejects zero, negative and non-finite frequencies
func mappable(frequency float64) bool {
	return frequency > 0 && !math.IsInf(frequency, 1)
}

// LogMapper maps frequencies in constant time using the semitone distance
// from C4. Halfway cases round up, toward the higher note.
type LogMapper struct{}

// Map converts a frequency to a note
func (LogMapper) Map(frequency float64) Note {
	if !mappable(frequency) {
		return unknown(frequency)
	}

	semitones := 12 * math.Log2(frequency/noteTable[0].Frequency)
	rounded := nearestSemitone(semitones)

	// Non-negative modulo, frequencies below C4 give negative distances
	index := ((rounded % 12) + 12) % 12

	return Note{
		Name:      noteTable[index].Name,
		Octave:    referenceOctave + int(math.Floor(float64(rounded)/12)),
		Frequency: frequency,
		Cents:     100 * (semitones - float64(rounded)),
	}
}

func nearestSemitone(semitones float64) int {
	return int(math.Floor(semitones + 0.5))
}

// FoldMapper octave-folds the frequency into the table range and picks the
// closest entry. Exact ties go to the lower note.
//
// The table stops at B4, so frequencies just above B fold down below C4 and
// resolve to C. LogMapper does not have this gap.
type FoldMapper struct{}

// Map converts a frequency to a note
func (FoldMapper) Map(frequency float64) Note {
	if !mappable(frequency) {
		return unknown(frequency)
	}

	low := noteTable[0].Frequency
	high := noteTable[len(noteTable)-1].Frequency

	folded := frequency
	octave := referenceOctave
	for folded < low {
		folded *= 2
		octave--
	}
	for folded > high {
		folded /= 2
		octave++
	}

	closest := closestEntry(noteTable[:], folded)

	return Note{
		Name:      noteTable[closest].Name,
		Octave:    octave,
		Frequency: frequency,
		Cents:     1200 * math.Log2(folded/noteTable[closest].Frequency),
	}
}

// closestEntry scans table in order, keeping the first of equally close entries
func closestEntry(table []NoteEntry, frequency float64) int {
	closest := 0
	minDifference := math.Abs(frequency - table[0].Frequency)
	for i, entry := range table {
		difference := math.Abs(frequency - entry.Frequency)
		if difference < minDifference {
			closest = i
			minDifference = difference
		}
	}
	return closest
}
