package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samuelscerri/polygoncore/internal/gpu"
)

var ErrMalformed = errors.New("malformed obj")

type objCorner struct {
	position, normal int
}

// ParseOBJ reads the v, vn and f statements of a Wavefront OBJ stream.
// Faces with more than three corners are fan triangulated. If any corner
// lacks a normal, all normals are recomputed from the faces.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var positions, normals []gpu.Vec3

	m := &Mesh{}
	corners := map[objCorner]uint32{}
	missingNormals := false

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vec, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			positions = append(positions, vec)

		case "vn":
			vec, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			normals = append(normals, vec)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least three corners", ErrMalformed, line)
			}

			face := make([]uint32, 0, len(fields)-1)
			for _, field := range fields[1:] {
				corner, err := parseCorner(field, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
				}
				if corner.normal < 0 {
					missingNormals = true
				}

				index, ok := corners[corner]
				if !ok {
					index = uint32(len(m.Positions))
					corners[corner] = index

					m.Positions = append(m.Positions, positions[corner.position])
					if corner.normal >= 0 {
						m.Normals = append(m.Normals, normals[corner.normal])
					} else {
						m.Normals = append(m.Normals, gpu.Vec3{})
					}
				}

				face = append(face, index)
			}

			for i := 1; i+1 < len(face); i++ {
				m.Indices = append(m.Indices, face[0], face[i], face[i+1])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrMalformed)
	}

	if missingNormals {
		m.computeNormals()
	}

	return m, nil
}

func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

func parseVec3(fields []string) (gpu.Vec3, error) {
	var vec gpu.Vec3

	if len(fields) < 3 {
		return vec, fmt.Errorf("expected 3 components, got %d", len(fields))
	}

	for i := range vec {
		value, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return vec, err
		}
		vec[i] = float32(value)
	}

	return vec, nil
}

// parseCorner decodes v, v/vt, v//vn and v/vt/vn references into zero based
// indices. A missing normal is reported as -1.
func parseCorner(field string, positions, normals int) (objCorner, error) {
	parts := strings.Split(field, "/")
	corner := objCorner{normal: -1}

	position, err := resolveIndex(parts[0], positions)
	if err != nil {
		return corner, fmt.Errorf("vertex %q: %v", field, err)
	}
	corner.position = position

	if len(parts) == 3 && parts[2] != "" {
		normal, err := resolveIndex(parts[2], normals)
		if err != nil {
			return corner, fmt.Errorf("normal %q: %v", field, err)
		}
		corner.normal = normal
	}

	return corner, nil
}

// resolveIndex converts a one based or negative relative OBJ index.
func resolveIndex(text string, count int) (int, error) {
	index, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}

	if index < 0 {
		index += count
	} else {
		index--
	}

	if index < 0 || index >= count {
		return 0, fmt.Errorf("index out of range")
	}

	return index, nil
}
