// Package mesh holds indexed triangle meshes with per-vertex world-space
// normals, loaded from Wavefront OBJ files or generated procedurally.
package mesh

import (
	"github.com/chewxy/math32"

	"github.com/samuelscerri/polygoncore/internal/gpu"
)

type Mesh struct {
	Positions []gpu.Vec3
	Normals   []gpu.Vec3
	Indices   []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertices packs the mesh into pipeline inputs with the position in slot 0
// and the normal in slot 1.
func (m *Mesh) Vertices() []gpu.VertexInput {
	vertices := make([]gpu.VertexInput, len(m.Positions))

	for index := range m.Positions {
		vertices[index].SetVec3(0, m.Positions[index])
		vertices[index].SetVec3(1, m.Normals[index])
	}

	return vertices
}

// Transform scales then translates every position. Normals are unaffected by
// a positive uniform scale.
func (m *Mesh) Transform(scale float32, translate gpu.Vec3) {
	for index := range m.Positions {
		m.Positions[index] = m.Positions[index].Mul(scale).Add(translate)
	}
}

// computeNormals replaces Normals with area weighted vertex normals.
func (m *Mesh) computeNormals() {
	m.Normals = make([]gpu.Vec3, len(m.Positions))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]

		face := m.Positions[b].Sub(m.Positions[a]).Cross(m.Positions[c].Sub(m.Positions[a]))

		m.Normals[a] = m.Normals[a].Add(face)
		m.Normals[b] = m.Normals[b].Add(face)
		m.Normals[c] = m.Normals[c].Add(face)
	}

	for index, normal := range m.Normals {
		if normal.Len() == 0 {
			m.Normals[index] = gpu.Vec3{0, 1, 0}
			continue
		}
		m.Normals[index] = normal.Normalize()
	}
}

// Sphere builds a UV sphere centered on the origin, wound counter-clockwise
// when seen from outside.
func Sphere(radius float32, stacks, slices int) *Mesh {
	stacks, slices = max(stacks, 2), max(slices, 3)
	m := &Mesh{}

	for stack := 0; stack <= stacks; stack++ {
		var phi float32 = math32.Pi * float32(stack) / float32(stacks)
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)

		for slice := 0; slice <= slices; slice++ {
			var theta float32 = 2 * math32.Pi * float32(slice) / float32(slices)
			sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)

			normal := gpu.Vec3{sinPhi * cosTheta, cosPhi, -sinPhi * sinTheta}

			m.Normals = append(m.Normals, normal)
			m.Positions = append(m.Positions, normal.Mul(radius))
		}
	}

	row := uint32(slices + 1)
	for stack := uint32(0); stack < uint32(stacks); stack++ {
		for slice := uint32(0); slice < uint32(slices); slice++ {
			a := stack*row + slice
			b := a + row

			if stack != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if stack != uint32(stacks)-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}

	return m
}

// Plane builds a square in the XZ plane facing +Y.
func Plane(size float32) *Mesh {
	var h float32 = size / 2

	return &Mesh{
		Positions: []gpu.Vec3{{-h, 0, h}, {h, 0, h}, {h, 0, -h}, {-h, 0, -h}},
		Normals:   []gpu.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}
