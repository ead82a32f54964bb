package scan

import (
	"encoding/binary"
	"testing"

	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// makeIndexBuffer builds a blob with a 0xEE-filled fake vertex region from
// 0x80 to 0xD00 (100 records of 32 bytes), the given u16 index values at
// 0xD00, and a 0xFF-filled tail.
func makeIndexBuffer(indices []uint16) []byte {
	buf := make([]byte, 0xD00+len(indices)*2+512)
	for i := 0x80; i < 0xD00; i++ {
		buf[i] = 0xEE
	}
	for i, v := range indices {
		binary.LittleEndian.PutUint16(buf[0xD00+i*2:], v)
	}
	for i := 0xD00 + len(indices)*2; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}

func fakeVertexStream() *VertexStream {
	return &VertexStream{Offset: 0x80, Stride: 32, Available: 100}
}

func sequentialTriples(n int) []uint16 {
	out := make([]uint16, n*3)
	for i := range out {
		out[i] = uint16(i % 100)
	}
	return out
}

func TestScanIndexStream_FindsU16Region(t *testing.T) {
	data := makeIndexBuffer(sequentialTriples(60))

	res, status := ScanIndexStream(data, 100, fakeVertexStream(), IndexScanOptions{})
	if status != mesh.StatusOK {
		t.Fatalf("status = %v, want %v", status, mesh.StatusOK)
	}
	if res.Candidate.Offset != 0xD00 {
		t.Errorf("offset = %#x, want 0xD00", res.Candidate.Offset)
	}
	if res.Candidate.Width != 2 {
		t.Errorf("width = %d, want 2", res.Candidate.Width)
	}
	if res.Candidate.Valid != 60 {
		t.Errorf("valid triangles = %d, want 60", res.Candidate.Valid)
	}
	if len(res.Indices) != 180 {
		t.Fatalf("got %d indices, want 180", len(res.Indices))
	}
	if res.Indices[0] != 0 || res.Indices[1] != 1 || res.Indices[2] != 2 {
		t.Errorf("first triple = %v, want (0, 1, 2)", res.Indices[:3])
	}
	if res.Candidate.ValidRatio < indexAcceptRatio {
		t.Errorf("valid ratio %v below acceptance bar", res.Candidate.ValidRatio)
	}
}

func TestScanIndexStream_MaxTrianglesCapsCollection(t *testing.T) {
	data := makeIndexBuffer(sequentialTriples(60))

	res, status := ScanIndexStream(data, 100, fakeVertexStream(), IndexScanOptions{MaxTriangles: 30})
	if status != mesh.StatusOK {
		t.Fatalf("status = %v, want %v", status, mesh.StatusOK)
	}
	if len(res.Indices) != 90 {
		t.Errorf("got %d indices, want 90", len(res.Indices))
	}
	if res.Candidate.Offset != 0xD00 {
		t.Errorf("offset = %#x, want 0xD00", res.Candidate.Offset)
	}
}

func TestScanIndexStream_RejectsLowValidRatio(t *testing.T) {
	// Groups of two valid triples followed by three out-of-range ones,
	// which keeps the best candidate well under the 0.50 bar.
	var indices []uint16
	for g := 0; g < 12; g++ {
		for t := 0; t < 2; t++ {
			base := uint16((g*2 + t) * 3 % 97)
			indices = append(indices, base, base+1, base+2)
		}
		for t := 0; t < 9; t++ {
			indices = append(indices, 0xFFFF)
		}
	}
	data := makeIndexBuffer(indices)

	res, status := ScanIndexStream(data, 100, fakeVertexStream(), IndexScanOptions{})
	if status != mesh.StatusLowConfidence {
		t.Fatalf("status = %v, want %v", status, mesh.StatusLowConfidence)
	}
	if res != nil {
		t.Error("expected no result for a low-confidence candidate")
	}
}

func TestScanIndexStream_NoCandidate(t *testing.T) {
	data := make([]byte, 0x2000)
	for i := range data {
		data[i] = 0xFF
	}

	res, status := ScanIndexStream(data, 100, fakeVertexStream(), IndexScanOptions{})
	if status != mesh.StatusNoCandidate {
		t.Fatalf("status = %v, want %v", status, mesh.StatusNoCandidate)
	}
	if res != nil {
		t.Error("expected no result")
	}
}

func TestScanIndexStream_TinySpan(t *testing.T) {
	data := makeIndexBuffer(sequentialTriples(60))

	_, status := ScanIndexStream(data, 4, fakeVertexStream(), IndexScanOptions{})
	if status != mesh.StatusTooSmall {
		t.Fatalf("status = %v, want %v", status, mesh.StatusTooSmall)
	}
}

func TestBudgetForSpan(t *testing.T) {
	small := budgetForSpan(100)
	large := budgetForSpan(5000)
	if small.triScanCap <= large.triScanCap {
		t.Errorf("small-span scan cap %d should exceed large-span cap %d",
			small.triScanCap, large.triScanCap)
	}
	if small.deadline <= large.deadline {
		t.Errorf("small-span deadline %v should exceed large-span deadline %v",
			small.deadline, large.deadline)
	}
}
