package gpu

// clipVertex is a post vertex-stage vertex in homogeneous clip space.
type clipVertex struct {
	position   [4]float32
	attributes [MaxAttributes]Attribute
}

func (v *clipVertex) inside() bool {
	for component := X; component <= Z; component++ {
		if v.position[component] > v.position[W] || -v.position[component] > v.position[W] {
			return false
		}
	}
	return true
}

func (v *clipVertex) interpolate(other *clipVertex, factor float32, varyings int) clipVertex {
	result := clipVertex{position: lerp4(v.position, other.position, factor)}

	for slot := 0; slot < varyings; slot++ {
		result.attributes[slot] = lerp4(v.attributes[slot], other.attributes[slot], factor)
	}

	return result
}

// clipPlane keeps the part of a convex polygon where
// direction*position[component] <= w.
func clipPlane(vertices []clipVertex, component int, direction float32, varyings int) (clipped []clipVertex) {
	if len(vertices) == 0 {
		return nil
	}

	var previousVertex *clipVertex = &vertices[len(vertices)-1]
	var previousComponent float32 = direction * previousVertex.position[component]
	var previousInside bool = previousComponent <= previousVertex.position[W]

	for index := range vertices {
		var currentVertex *clipVertex = &vertices[index]
		var currentComponent float32 = direction * currentVertex.position[component]
		var currentInside bool = currentComponent <= currentVertex.position[W]

		if currentInside != previousInside {
			var factor float32 = (previousVertex.position[W] - previousComponent) /
				((previousVertex.position[W] - previousComponent) - (currentVertex.position[W] - currentComponent))

			clipped = append(clipped, previousVertex.interpolate(currentVertex, factor, varyings))
		}

		if currentInside {
			clipped = append(clipped, *currentVertex)
		}

		previousVertex = currentVertex
		previousComponent = currentComponent
		previousInside = currentInside
	}

	return clipped
}

// clipTriangle clips against all six frustum planes. The result is a convex
// polygon with zero or at least three vertices.
func clipTriangle(triangle [3]clipVertex, varyings int) []clipVertex {
	vertices := triangle[:]

	for component := X; component <= Z; component++ {
		vertices = clipPlane(vertices, component, -1, varyings)
		vertices = clipPlane(vertices, component, 1, varyings)

		if len(vertices) < 3 {
			return nil
		}
	}

	return vertices
}
