package scan

import (
	"reflect"
	"testing"
)

func TestRemapTriangles(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint32
		origIndices []int
		want        []uint32
	}{
		{
			name:        "identity mapping",
			indices:     []uint32{0, 1, 2, 2, 1, 3},
			origIndices: []int{0, 1, 2, 3},
			want:        []uint32{0, 1, 2, 2, 1, 3},
		},
		{
			name:        "compacted after drops",
			indices:     []uint32{0, 2, 3, 2, 3, 5},
			origIndices: []int{0, 2, 3, 5},
			want:        []uint32{0, 1, 2, 1, 2, 3},
		},
		{
			name:        "triple referencing dropped vertex removed",
			indices:     []uint32{0, 1, 2, 0, 2, 3},
			origIndices: []int{0, 2, 3},
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "degenerate triple removed",
			indices:     []uint32{2, 2, 3, 0, 2, 3},
			origIndices: []int{0, 2, 3},
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "trailing partial triple ignored",
			indices:     []uint32{0, 2, 3, 0, 2},
			origIndices: []int{0, 2, 3},
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "all triples dropped",
			indices:     []uint32{7, 8, 9},
			origIndices: []int{0, 2, 3},
			want:        []uint32{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemapTriangles(tt.indices, tt.origIndices)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if len(got)%3 != 0 {
				t.Errorf("result length %d is not a multiple of three", len(got))
			}
		})
	}
}
