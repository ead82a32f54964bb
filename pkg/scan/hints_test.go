package scan

import (
	"encoding/binary"
	"math"
	"testing"
)

func putBBox(buf []byte, min, max [3]float32) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[0x0C+i*4:], math.Float32bits(min[i]))
		binary.LittleEndian.PutUint32(buf[0x18+i*4:], math.Float32bits(max[i]))
	}
}

func TestProbeBBox(t *testing.T) {
	tests := []struct {
		name string
		min  [3]float32
		max  [3]float32
		want bool
	}{
		{"sane box", [3]float32{-1, -2, -3}, [3]float32{1, 2, 3}, true},
		{"flat axis allowed", [3]float32{-1, 0, -1}, [3]float32{1, 0, 1}, true},
		{"min above max", [3]float32{5, 0, 0}, [3]float32{-5, 1, 1}, false},
		{"collapsed to a point", [3]float32{1, 2, 3}, [3]float32{1, 2, 3}, false},
		{"coordinate out of range", [3]float32{-1e9, 0, 0}, [3]float32{1, 1, 1}, false},
		{"nan coordinate", [3]float32{float32(math.NaN()), 0, 0}, [3]float32{1, 1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 0x30)
			putBBox(buf, tt.min, tt.max)
			got := ProbeBBox(buf)
			if (got != nil) != tt.want {
				t.Errorf("ProbeBBox = %v, want present=%v", got, tt.want)
			}
			if got != nil {
				if got.Min != tt.min || got.Max != tt.max {
					t.Errorf("box = (%v, %v), want (%v, %v)", got.Min, got.Max, tt.min, tt.max)
				}
			}
		})
	}

	t.Run("truncated header", func(t *testing.T) {
		if got := ProbeBBox(make([]byte, 0x10)); got != nil {
			t.Errorf("expected nil for truncated header, got %v", got)
		}
	})
}

func TestProbeCountHint(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		want  int
	}{
		{"plausible count", 1200, 1200},
		{"lower bound", 4, 4},
		{"below lower bound", 3, 0},
		{"upper bound", 250000, 250000},
		{"above upper bound", 250001, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 0x2C)
			binary.LittleEndian.PutUint32(buf[0x28:], tt.value)
			if got := ProbeCountHint(buf); got != tt.want {
				t.Errorf("ProbeCountHint = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("truncated header", func(t *testing.T) {
		if got := ProbeCountHint(make([]byte, 0x20)); got != 0 {
			t.Errorf("expected 0 for truncated header, got %d", got)
		}
	})
}

func TestBBoxHintContains(t *testing.T) {
	box := &BBoxHint{
		Min:  [3]float32{0, 0, 0},
		Max:  [3]float32{10, 10, 1},
		Span: [3]float32{10, 10, 1},
	}

	tests := []struct {
		name    string
		x, y, z float32
		want    bool
	}{
		{"inside", 5, 5, 0.5, true},
		{"on boundary", 10, 10, 1, true},
		{"within proportional margin", 10.9, 5, 0.5, true},
		{"beyond proportional margin", 11.1, 5, 0.5, false},
		{"within floor margin on flat-ish axis", 5, 5, 1.2, true},
		{"beyond floor margin", 5, 5, 1.3, false},
		{"far outside", 50, 5, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.x, tt.y, tt.z); got != tt.want {
				t.Errorf("Contains(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
			}
		})
	}
}
