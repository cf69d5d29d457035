package gpu

import "github.com/chewxy/math32"

// screenVertex is a vertex after the w divide and viewport transform.
// Attributes are premultiplied by inverseW for perspective-correct
// interpolation.
type screenVertex struct {
	x, y, depth, inverseW float32
	attributes            [MaxAttributes]Attribute
}

type Triangle struct {
	vertices [3]screenVertex

	// area is twice the signed window-space area.
	area float32

	minX, minY, maxX, maxY int
}

func toScreenSpace(v *clipVertex, width, height, varyings int) screenVertex {
	var inverseW float32 = 1 / v.position[W]

	result := screenVertex{
		x:        (v.position[X]*inverseW + 1) * float32(width) / 2,
		y:        (1 - v.position[Y]*inverseW) * float32(height) / 2,
		depth:    v.position[Z]*inverseW*.5 + .5,
		inverseW: inverseW,
	}

	for slot := 0; slot < varyings; slot++ {
		for component := range result.attributes[slot] {
			result.attributes[slot][component] = v.attributes[slot][component] * inverseW
		}
	}

	return result
}

func edge(a, b *screenVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func newTriangle(v0, v1, v2 screenVertex, width, height int) Triangle {
	triangle := Triangle{vertices: [3]screenVertex{v0, v1, v2}}
	triangle.area = edge(&v0, &v1, v2.x, v2.y)

	triangle.minX = clampInt(int(math32.Floor(math32.Min(v0.x, math32.Min(v1.x, v2.x)))), 0, width-1)
	triangle.minY = clampInt(int(math32.Floor(math32.Min(v0.y, math32.Min(v1.y, v2.y)))), 0, height-1)
	triangle.maxX = clampInt(int(math32.Ceil(math32.Max(v0.x, math32.Max(v1.x, v2.x)))), 0, width-1)
	triangle.maxY = clampInt(int(math32.Ceil(math32.Max(v0.y, math32.Max(v1.y, v2.y)))), 0, height-1)

	return triangle
}

// frontFacing reports counter-clockwise winding as seen in normalized device
// coordinates. The viewport flips y, so that is a negative window area.
func (triangle *Triangle) frontFacing() bool {
	return triangle.area < 0
}

// Barycentric returns the weights of the three vertices at a window position.
// All three are non-negative inside the triangle regardless of winding.
func (triangle *Triangle) Barycentric(x, y float32) (s, t, w float32) {
	var inverseArea float32 = 1 / triangle.area

	s = edge(&triangle.vertices[1], &triangle.vertices[2], x, y) * inverseArea
	t = edge(&triangle.vertices[2], &triangle.vertices[0], x, y) * inverseArea
	w = 1 - s - t

	return
}

func (triangle *Triangle) Inside(x, y float32) (bool, float32, float32, float32) {
	var s, t, w float32 = triangle.Barycentric(x, y)

	return s >= 0 && t >= 0 && w >= 0, s, t, w
}

// fragment fills in the interpolated inputs for a covered pixel.
func (triangle *Triangle) fragment(in *FragmentInput, x, y, s, t, w float32, varyings int) {
	a, b, c := &triangle.vertices[0], &triangle.vertices[1], &triangle.vertices[2]

	var inverseW float32 = s*a.inverseW + t*b.inverseW + w*c.inverseW
	var correction float32 = 1 / inverseW

	in.Coord = Vec4{x, y, s*a.depth + t*b.depth + w*c.depth, inverseW}

	for slot := 0; slot < varyings; slot++ {
		for component := range in.Attributes[slot] {
			in.Attributes[slot][component] = (s*a.attributes[slot][component] +
				t*b.attributes[slot][component] +
				w*c.attributes[slot][component]) * correction
		}
	}
}
