package pitch

import (
	"errors"
	"math"
	"testing"
)

var mappers = []struct {
	name   string
	mapper Mapper
}{
	{"log", LogMapper{}},
	{"fold", FoldMapper{}},
}

func TestNoteTable(t *testing.T) {
	notes := Notes()
	if len(notes) != 12 {
		t.Fatalf("len(Notes()) = %d, want 12", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].Frequency <= notes[i-1].Frequency {
			t.Fatalf("table not ascending at %s", notes[i].Name)
		}
	}
	if ratio := notes[11].Frequency / notes[0].Frequency; ratio >= 2 {
		t.Fatalf("table spans ratio %v, want less than one octave", ratio)
	}

	notes[0].Name = "X"
	if Notes()[0].Name != "C" {
		t.Fatal("Notes() exposed the shared table")
	}
}

func TestMapReferenceFrequencies(t *testing.T) {
	for _, m := range mappers {
		for _, entry := range Notes() {
			note := m.mapper.Map(entry.Frequency)
			if note.Name != entry.Name || note.Octave != 4 {
				t.Fatalf("%s: Map(%v) = %s, want %s4", m.name, entry.Frequency, note, entry.Name)
			}
			if math.Abs(note.Cents) > 0.5 {
				t.Fatalf("%s: Map(%v) cents = %v, want about 0", m.name, entry.Frequency, note.Cents)
			}
		}
	}
}

func TestMapOctaves(t *testing.T) {
	tests := []struct {
		freq   float64
		name   string
		octave int
	}{
		{440, "A", 4},
		{880, "A", 5},
		{220, "A", 3},
		{27.5, "A", 0},
		{3520, "A", 7},
		{65.41, "C", 2},
		{246.94, "B", 3},
		{1046.5, "C", 6},
	}

	for _, m := range mappers {
		for _, tt := range tests {
			note := m.mapper.Map(tt.freq)
			if note.Name != tt.name || note.Octave != tt.octave {
				t.Fatalf("%s: Map(%v) = %s, want %s%d", m.name, tt.freq, note, tt.name, tt.octave)
			}
			if note.Frequency != tt.freq {
				t.Fatalf("%s: Map(%v).Frequency = %v", m.name, tt.freq, note.Frequency)
			}
		}
	}
}

func TestMapUnknown(t *testing.T) {
	for _, m := range mappers {
		for _, freq := range []float64{0, -5, math.NaN(), math.Inf(1), math.Inf(-1)} {
			note := m.mapper.Map(freq)
			if note.Name != UnknownNote || note.Known() {
				t.Fatalf("%s: Map(%v) = %q, want %q", m.name, freq, note.Name, UnknownNote)
			}
			if note.String() != UnknownNote {
				t.Fatalf("%s: String() = %q", m.name, note.String())
			}
		}
	}
}

func TestMapCents(t *testing.T) {
	want := 1200 * math.Log2(445.0/440.0)
	for _, m := range mappers {
		note := m.mapper.Map(445)
		if note.Name != "A" {
			t.Fatalf("%s: Map(445) = %s, want A", m.name, note)
		}
		if math.Abs(note.Cents-want) > 0.1 {
			t.Fatalf("%s: cents = %.3f, want %.3f", m.name, note.Cents, want)
		}
	}
}

func TestNearestSemitoneRoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.5, 1},
		{-0.5, 0},
		{-1.5, -1},
		{0.49, 0},
		{-0.49, 0},
		{-0.51, -1},
		{11.5, 12},
		{2.5, 3},
	}
	for _, tt := range tests {
		if got := nearestSemitone(tt.in); got != tt.want {
			t.Fatalf("nearestSemitone(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLogMapperQuarterToneBoundary(t *testing.T) {
	c := Notes()[0].Frequency
	just := func(semitones float64) float64 { return c * math.Exp2(semitones/12) }

	tests := []struct {
		freq float64
		name string
	}{
		{just(0.499), "C"},
		{just(0.501), "C#"},
		{just(-0.499), "C"},
		{just(-0.501), "B"},
		{just(11.499), "B"},
		{just(11.501), "C"},
	}
	for _, tt := range tests {
		if got := (LogMapper{}).Map(tt.freq); got.Name != tt.name {
			t.Fatalf("Map(%.4f) = %s, want %s", tt.freq, got.Name, tt.name)
		}
	}
}

func TestFoldMapperMidpoint(t *testing.T) {
	notes := Notes()
	mid := (notes[0].Frequency + notes[1].Frequency) / 2

	if got := (FoldMapper{}).Map(mid - 0.01); got.Name != "C" {
		t.Fatalf("below midpoint: got %s, want C", got.Name)
	}
	if got := (FoldMapper{}).Map(mid + 0.01); got.Name != "C#" {
		t.Fatalf("above midpoint: got %s, want C#", got.Name)
	}
}

func TestClosestEntryTieGoesToLowerNote(t *testing.T) {
	table := []NoteEntry{{"C", 100}, {"C#", 200}, {"D", 300}}

	tests := []struct {
		freq float64
		want int
	}{
		{150, 0},
		{250, 1},
		{149, 0},
		{151, 1},
		{1000, 2},
	}
	for _, tt := range tests {
		if got := closestEntry(table, tt.freq); got != tt.want {
			t.Fatalf("closestEntry(%v) = %d, want %d", tt.freq, got, tt.want)
		}
	}
}

func TestFoldMapperGapAboveB(t *testing.T) {
	tests := []struct {
		freq   float64
		octave int
		cents  float64
	}{
		{505, 5, -61.5},
		{250, 4, -78.7},
	}
	for _, tt := range tests {
		note := (FoldMapper{}).Map(tt.freq)
		if note.Name != "C" || note.Octave != tt.octave {
			t.Fatalf("Map(%v) = %s, want C%d", tt.freq, note, tt.octave)
		}
		if math.Abs(note.Cents-tt.cents) > 0.1 {
			t.Fatalf("Map(%v) cents = %.2f, want %.1f", tt.freq, note.Cents, tt.cents)
		}
	}

	// The same frequency is a B under the log policy
	if got := (LogMapper{}).Map(505); got.Name != "B" || got.Octave != 4 {
		t.Fatalf("LogMapper.Map(505) = %s, want B4", got)
	}
}

func TestNewMapper(t *testing.T) {
	if m, err := NewMapper(PolicyLog); err != nil || m != (LogMapper{}) {
		t.Fatalf("NewMapper(log) = %v, %v", m, err)
	}
	if m, err := NewMapper(PolicyFold); err != nil || m != (FoldMapper{}) {
		t.Fatalf("NewMapper(fold) = %v, %v", m, err)
	}
	if _, err := NewMapper("nearest"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("NewMapper(nearest): err = %v, want ErrUnknownPolicy", err)
	}
}
