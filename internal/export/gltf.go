// Package export serializes normalized meshes to glTF 2.0 binary files.
// Buffer views are laid out by hand into a single buffer: indices first,
// then position, normal, UV and color streams.
package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/ghost-assets/pkg/mesh"
)

// ErrEmptyMesh means there were no vertices to serialize.
var ErrEmptyMesh = errors.New("empty mesh")

// Document converts a mesh into a glTF document with one scene, one node
// and one glTF mesh. Triangle meshes get one primitive per source material
// group; pointclouds get a single point-mode primitive.
func Document(m *mesh.Mesh) (*gltf.Document, error) {
	if m.VertexCount() == 0 {
		return nil, ErrEmptyMesh
	}

	doc := &gltf.Document{}
	doc.Asset.Version = "2.0"
	doc.Asset.Generator = "ghosttool"
	scene := uint32(0)
	doc.Scene = &scene
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Nodes: []uint32{0}})
	meshIdx := uint32(0)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: &meshIdx})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})

	fillMaterials(doc, m)

	groups := primitiveGroups(m)

	// Index data for every primitive goes into one element-array view,
	// each primitive addressing its slice through an accessor offset.
	var indexView uint32
	if len(groups) > 0 {
		buf := &bytes.Buffer{}
		for _, g := range groups {
			binary.Write(buf, binary.LittleEndian, g.indices)
		}
		indexView = appendView(doc, buf.Bytes(), gltf.TargetElementArrayBuffer)
	}

	attrs := make(gltf.Attribute)
	attrs["POSITION"] = positionAccessor(doc, m.Positions)
	if len(m.Normals) == len(m.Positions) && len(m.Normals) > 0 {
		attrs["NORMAL"] = vec3Accessor(doc, m.Normals)
	}
	if len(m.UVs) == len(m.Positions) && len(m.UVs) > 0 {
		attrs["TEXCOORD_0"] = vec2Accessor(doc, m.UVs)
	}
	if len(m.Colors) == len(m.Positions) && len(m.Colors) > 0 {
		attrs["COLOR_0"] = colorAccessor(doc, m.Colors)
	}

	out := &gltf.Mesh{}
	if len(groups) == 0 {
		mat := uint32(0)
		out.Primitives = append(out.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Mode:       gltf.PrimitivePoints,
			Material:   &mat,
		})
	} else {
		start := uint32(0)
		for _, g := range groups {
			acc := &gltf.Accessor{
				BufferView:    &indexView,
				ByteOffset:    start * 4,
				ComponentType: gltf.ComponentUint,
				Type:          gltf.AccessorScalar,
				Count:         uint32(len(g.indices)),
			}
			accIdx := uint32(len(doc.Accessors))
			doc.Accessors = append(doc.Accessors, acc)
			start += uint32(len(g.indices))

			mat := g.material
			if int(mat) >= len(doc.Materials) {
				mat = 0
			}
			out.Primitives = append(out.Primitives, &gltf.Primitive{
				Attributes: attrs,
				Indices:    &accIdx,
				Mode:       gltf.PrimitiveTriangles,
				Material:   &mat,
			})
		}
	}
	doc.Meshes = append(doc.Meshes, out)

	return doc, nil
}

// WriteGLB serializes a mesh to a .glb file.
func WriteGLB(m *mesh.Mesh, path string) error {
	doc, err := Document(m)
	if err != nil {
		return errors.Wrap(err, "building glTF document")
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

type primitiveGroup struct {
	material uint32
	indices  []uint32
}

// primitiveGroups splits the index list into per-material primitives in
// ascending material order so output is reproducible. An ungrouped triangle
// mesh becomes a single primitive under material 0.
func primitiveGroups(m *mesh.Mesh) []primitiveGroup {
	if len(m.Indices) == 0 {
		return nil
	}
	if len(m.Groups) == 0 {
		return []primitiveGroup{{material: 0, indices: m.Indices}}
	}

	ids := make([]uint32, 0, len(m.Groups))
	for id := range m.Groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	groups := make([]primitiveGroup, 0, len(ids))
	for _, id := range ids {
		if len(m.Groups[id]) == 0 {
			continue
		}
		groups = append(groups, primitiveGroup{material: id, indices: m.Groups[id]})
	}
	return groups
}

// fillMaterials creates one white double-sided material per declared name,
// or a single default when the source had no material table.
func fillMaterials(doc *gltf.Document, m *mesh.Mesh) {
	names := m.Materials
	if len(names) == 0 {
		name := "default"
		if m.Mode == mesh.ModeFallbackStub {
			name = "placeholder"
		}
		names = []string{name}
	}

	metallic := float32(0)
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("material_%d", i)
		}
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{1, 1, 1, 1},
				MetallicFactor:  &metallic,
			},
		})
	}
}

// appendView writes raw bytes into the shared buffer and registers a view
// over them.
func appendView(doc *gltf.Document, data []byte, target gltf.Target) uint32 {
	buffer := doc.Buffers[0]
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(len(data)),
		Target:     target,
	}
	buffer.Data = append(buffer.Data, data...)
	buffer.ByteLength += uint32(len(data))

	idx := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, view)
	return idx
}

// positionAccessor writes positions with the min/max bounds glTF requires
// on POSITION.
func positionAccessor(doc *gltf.Document, positions [][3]float32) uint32 {
	min := positions[0]
	max := positions[0]
	for _, p := range positions {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	idx := vec3Accessor(doc, positions)
	doc.Accessors[idx].Min = []float32{min[0], min[1], min[2]}
	doc.Accessors[idx].Max = []float32{max[0], max[1], max[2]}
	return idx
}

func vec3Accessor(doc *gltf.Document, data [][3]float32) uint32 {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, data)
	view := appendView(doc, buf.Bytes(), gltf.TargetArrayBuffer)

	idx := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(data)),
	})
	return idx
}

func vec2Accessor(doc *gltf.Document, data [][2]float32) uint32 {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, data)
	view := appendView(doc, buf.Bytes(), gltf.TargetArrayBuffer)

	idx := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec2,
		Count:         uint32(len(data)),
	})
	return idx
}

func colorAccessor(doc *gltf.Document, data [][4]uint8) uint32 {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, data)
	view := appendView(doc, buf.Bytes(), gltf.TargetArrayBuffer)

	idx := uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    &view,
		ComponentType: gltf.ComponentUbyte,
		Type:          gltf.AccessorVec4,
		Normalized:    true,
		Count:         uint32(len(data)),
	})
	return idx
}
