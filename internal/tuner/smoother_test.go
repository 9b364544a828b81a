package tuner

import "testing"

func TestSmootherEvictsOldest(t *testing.T) {
	s := NewSmoother(DefaultSmoothing)

	for i := 0; i < DefaultSmoothing; i++ {
		s.Add(100)
	}
	if got := s.Mean(); got != 100 {
		t.Fatalf("Mean() = %v, want 100", got)
	}

	// Replace half the window
	var got float64
	for i := 0; i < DefaultSmoothing/2; i++ {
		got = s.Add(200)
	}
	if s.Len() != DefaultSmoothing {
		t.Fatalf("Len() = %d, want %d", s.Len(), DefaultSmoothing)
	}
	if got != 150 {
		t.Fatalf("average = %v, want 150", got)
	}

	s.Reset()
	if s.Len() != 0 || s.Mean() != 0 {
		t.Fatalf("after Reset: len %d mean %v", s.Len(), s.Mean())
	}
}

func TestSmootherMinimumSize(t *testing.T) {
	s := NewSmoother(0)
	s.Add(10)
	if got := s.Add(20); got != 20 {
		t.Fatalf("size-1 smoother = %v, want 20", got)
	}
}
