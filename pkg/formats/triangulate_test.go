package formats

import (
	"reflect"
	"testing"
)

func TestTriangulateStrip(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint16
		start       int
		count       int
		vtxOffset   int
		vertexCount int
		want        []uint32
	}{
		{
			name:        "plain strip with alternating winding",
			indices:     []uint16{0, 1, 2, 3, 4},
			count:       5,
			vertexCount: 5,
			want:        []uint32{0, 1, 2, 1, 3, 2, 2, 3, 4},
		},
		{
			name:        "too short for a window",
			indices:     []uint16{0, 1},
			count:       2,
			vertexCount: 5,
			want:        nil,
		},
		{
			// The doubled index restarts the strip; both degenerate
			// windows still flip the winding.
			name:        "restart marker splits the strip",
			indices:     []uint16{0, 1, 2, 2, 3, 4, 5},
			count:       7,
			vertexCount: 6,
			want:        []uint32{0, 1, 2, 2, 4, 3, 3, 4, 5},
		},
		{
			name:        "out-of-range windows dropped",
			indices:     []uint16{0, 1, 9, 2, 3},
			count:       5,
			vertexCount: 4,
			want:        nil,
		},
		{
			name:        "vertex offset applied",
			indices:     []uint16{0, 1, 2},
			count:       3,
			vtxOffset:   10,
			vertexCount: 13,
			want:        []uint32{10, 11, 12},
		},
		{
			name:        "count clipped to buffer",
			indices:     []uint16{0, 1, 2},
			count:       50,
			vertexCount: 5,
			want:        []uint32{0, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triangulateStrip(tt.indices, tt.start, tt.count, tt.vtxOffset, tt.vertexCount)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// A rejected window still advances the winding flag; a strip whose middle
// window is degenerate must come out with the same parity as the intact
// strip would have at that position.
func TestTriangulateStrip_RejectionAdvancesWinding(t *testing.T) {
	got := triangulateStrip([]uint16{0, 1, 1, 2, 3}, 0, 5, 0, 6)
	// Windows: (0,1,1) rejected, (1,1,2) rejected, (1,2,3) at even parity.
	want := []uint32{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTriangulateList(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint16
		start       int
		count       int
		vtxOffset   int
		vertexCount int
		want        []uint32
	}{
		{
			name:        "direct triples",
			indices:     []uint16{0, 1, 2, 2, 1, 3},
			count:       6,
			vertexCount: 4,
			want:        []uint32{0, 1, 2, 2, 1, 3},
		},
		{
			name:        "partial trailing triple ignored",
			indices:     []uint16{0, 1, 2, 2, 1},
			count:       5,
			vertexCount: 4,
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "out-of-range triple dropped",
			indices:     []uint16{0, 1, 2, 0, 9, 1},
			count:       6,
			vertexCount: 4,
			want:        []uint32{0, 1, 2},
		},
		{
			name:        "offset applied",
			indices:     []uint16{0, 1, 2},
			count:       3,
			vtxOffset:   4,
			vertexCount: 7,
			want:        []uint32{4, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := triangulateList(tt.indices, tt.start, tt.count, tt.vtxOffset, tt.vertexCount)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTriangulate_OffsetsAccumulateByDeclaredCounts(t *testing.T) {
	data := buildNOD(
		[]string{"a", "b"},
		0,
		[]nodTestVertexGroup{{
			typ:    0,
			stride: 0x20,
			vertices: [][3]float32{
				{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
				{2, 0, 0}, {3, 0, 0}, {2, 1, 0},
			},
		}},
		[]uint16{0, 1, 2, 3, 0, 1, 2},
		[]nodTestMeshGroup{
			{materialID: 0, stripCount: 4, vertexCount: 4},
			{materialID: 1, listCount: 3, vertexCount: 3},
		},
	)
	nod, err := ParseNOD(data)
	if err != nil {
		t.Fatalf("ParseNOD: %v", err)
	}

	ts := nod.Triangulate(nod.TotalVertexCount())
	if ts.TriangleCount() != 3 {
		t.Fatalf("got %d triangles, want 3", ts.TriangleCount())
	}
	// Second group's local (0,1,2) lands after the first group's four
	// declared vertices.
	if !reflect.DeepEqual(ts.Groups[1], []uint32{4, 5, 6}) {
		t.Errorf("material 1 triangles = %v, want [4 5 6]", ts.Groups[1])
	}
	if len(ts.Groups[0]) != 6 {
		t.Errorf("material 0 has %d indices, want 6", len(ts.Groups[0]))
	}
}
