package gpu

// MaxAttributes is the number of attribute slots carried by every vertex and
// fragment.
const MaxAttributes = 4

type Attribute [4]float32

type VertexInput struct {
	Attributes [MaxAttributes]Attribute
}

func (in *VertexInput) Vec3(slot int) Vec3 {
	a := in.Attributes[slot]
	return Vec3{a[X], a[Y], a[Z]}
}

func (in *VertexInput) SetVec3(slot int, v Vec3) {
	in.Attributes[slot] = Attribute{v[X], v[Y], v[Z], 0}
}

type VertexOutput struct {
	// Position is in clip space; the pipeline performs the w divide.
	Position   Vec4
	Attributes [MaxAttributes]Attribute
}

func (out *VertexOutput) SetVec3(slot int, v Vec3) {
	out.Attributes[slot] = Attribute{v[X], v[Y], v[Z], 0}
}

type FragmentInput struct {
	// Coord holds the window x, y of the pixel center, the depth and 1/w.
	Coord      Vec4
	Attributes [MaxAttributes]Attribute
}

func (in *FragmentInput) Vec3(slot int) Vec3 {
	a := in.Attributes[slot]
	return Vec3{a[X], a[Y], a[Z]}
}

type FragmentOutput struct {
	Color Vec4
}

type VertexShader func(out *VertexOutput, in *VertexInput, u *Uniforms)

type FragmentShader func(out *FragmentOutput, in *FragmentInput, u *Uniforms)

// Program pairs both shader stages. Varyings is the number of leading output
// slots the rasterizer interpolates between them.
type Program struct {
	Vertex   VertexShader
	Fragment FragmentShader
	Varyings int
}
