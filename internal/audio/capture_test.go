package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		rms     float64
		db      float64
	}{
		{"empty", nil, 0, -100},
		{"silence", []float64{0, 0, 0, 0}, 0, -100},
		{"full scale square", []float64{1, -1, 1, -1}, 1, 0},
		{"half scale", []float64{0.5, -0.5}, 0.5, 20 * math.Log10(0.5)},
	}

	for _, tt := range tests {
		buf := &AudioBuffer{Samples: tt.samples, SampleRate: 44100}
		rms, db := buf.Level()
		if math.Abs(rms-tt.rms) > 1e-12 || math.Abs(db-tt.db) > 1e-9 {
			t.Fatalf("%s: Level() = (%v, %v), want (%v, %v)", tt.name, rms, db, tt.rms, tt.db)
		}
	}

	var nilBuf *AudioBuffer
	if got := nilBuf.RMS(); got != 0 {
		t.Fatalf("nil RMS = %v, want 0", got)
	}
}

func TestMixDown(t *testing.T) {
	stereo := []float32{0.2, 0.4, -0.2, -0.6}
	got := mixDown(nil, stereo, 2, 2)
	want := []float64{0.6, -0.8}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPortAudioStartFailureReleases(t *testing.T) {
	var initialized, terminated int
	openErr := errors.New("no input device")

	oldInit, oldTerm, oldOpen := paInitialize, paTerminate, paOpenInput
	t.Cleanup(func() { paInitialize, paTerminate, paOpenInput = oldInit, oldTerm, oldOpen })
	paInitialize = func() error { initialized++; return nil }
	paTerminate = func() error { terminated++; return nil }
	paOpenInput = func(int, float64, int, func([]float32)) (*portaudio.Stream, error) {
		return nil, openErr
	}

	c, err := NewPortAudioCapturer(1024, 44100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if initialized != 0 {
		t.Fatalf("constructor initialized PortAudio %d times", initialized)
	}

	if err := c.Start(); !errors.Is(err, openErr) {
		t.Fatalf("Start: err = %v, want %v", err, openErr)
	}
	if initialized != 1 || terminated != 1 {
		t.Fatalf("initialize/terminate = %d/%d, want 1/1", initialized, terminated)
	}
	if c.IsCapturing() {
		t.Fatal("capturing after failed Start")
	}
	if err := c.Stop(); !errors.Is(err, ErrNotCapturing) {
		t.Fatalf("Stop: err = %v, want ErrNotCapturing", err)
	}
	if terminated != 1 {
		t.Fatalf("terminate called %d times, want 1", terminated)
	}
}

func TestPortAudioInitFailure(t *testing.T) {
	initErr := errors.New("host api unavailable")

	oldInit, oldTerm := paInitialize, paTerminate
	t.Cleanup(func() { paInitialize, paTerminate = oldInit, oldTerm })
	paInitialize = func() error { return initErr }
	paTerminate = func() error {
		t.Fatal("terminate without a successful initialize")
		return nil
	}

	c, err := NewPortAudioCapturer(1024, 44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); !errors.Is(err, initErr) {
		t.Fatalf("Start: err = %v, want %v", err, initErr)
	}
}
