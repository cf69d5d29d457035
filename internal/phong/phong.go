// Package phong implements the vertex and fragment stages of a stylized
// per-fragment Phong lighting model.
//
// Lighting is evaluated in world space. The material is fixed: the diffuse
// color blends from green to white as the normal turns upward, the specular
// color is white and there is no ambient term.
package phong

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/samuelscerri/polygoncore/internal/gpu"
)

// Uniform names the host pipeline must provide.
const (
	ViewMatrix       = "viewMatrix"
	ProjectionMatrix = "projectionMatrix"
	LightPosition    = "lightPosition"
	CameraPosition   = "cameraPosition"
)

// Attribute slots shared by the vertex input, the varyings and the fragment
// input.
const (
	PositionSlot = 0
	NormalSlot   = 1
)

// Shininess is the exponent applied to the specular cosine.
const Shininess = 40

// Bindings holds the uniform locations both stages read, resolved once when
// the program is set up.
type Bindings struct {
	View       gpu.Location
	Projection gpu.Location
	Light      gpu.Location
	Camera     gpu.Location
}

// Bind resolves every uniform the shaders use and checks its type.
func Bind(u *gpu.Uniforms) (Bindings, error) {
	var b Bindings

	for _, binding := range []struct {
		name string
		kind gpu.UniformKind
		loc  *gpu.Location
	}{
		{ViewMatrix, gpu.UniformMat4, &b.View},
		{ProjectionMatrix, gpu.UniformMat4, &b.Projection},
		{LightPosition, gpu.UniformVec3, &b.Light},
		{CameraPosition, gpu.UniformVec3, &b.Camera},
	} {
		loc, err := u.Location(binding.name)
		if err != nil {
			return Bindings{}, fmt.Errorf("bind phong program: %w", err)
		}
		if kind := u.Kind(loc); kind != binding.kind {
			return Bindings{}, fmt.Errorf("bind phong program: %w: %q is %s, want %s", gpu.ErrUniformType, binding.name, kind, binding.kind)
		}
		*binding.loc = loc
	}

	return b, nil
}

func (b Bindings) Program() *gpu.Program {
	return &gpu.Program{
		Vertex:   b.VertexShader,
		Fragment: b.FragmentShader,
		Varyings: 2,
	}
}

// VertexShader transforms the world-space position to clip space and passes
// position and normal through untouched for interpolation.
func (b Bindings) VertexShader(out *gpu.VertexOutput, in *gpu.VertexInput, u *gpu.Uniforms) {
	position := in.Vec3(PositionSlot)
	normal := in.Vec3(NormalSlot)

	out.Position = ClipPosition(u.Mat4(b.View), u.Mat4(b.Projection), position)

	out.SetVec3(PositionSlot, position)
	out.SetVec3(NormalSlot, normal)
}

// FragmentShader shades the interpolated world-space surface point.
func (b Bindings) FragmentShader(out *gpu.FragmentOutput, in *gpu.FragmentInput, u *gpu.Uniforms) {
	out.Color = Shade(
		in.Vec3(PositionSlot),
		in.Vec3(NormalSlot),
		u.Vec3(b.Light),
		u.Vec3(b.Camera),
	)
}

// ClipPosition computes projection * view * (p, 1). The w divide is left to
// the rasterizer.
func ClipPosition(view, projection gpu.Mat4, p gpu.Vec3) gpu.Vec4 {
	return projection.Mul4(view).Mul4x1(p.Vec4(1))
}

// Shade returns the color of a surface point. The normal does not need to be
// unit length but must not be zero; neither may the light or camera
// directions.
func Shade(position, normal, light, camera gpu.Vec3) gpu.Vec4 {
	// Interpolation across a triangle shortens the normal.
	n := normal.Normalize()

	// Exact compare: only an axis-aligned upward normal takes this path.
	if n[gpu.X] == 0 && n[gpu.Y] > 0 && n[gpu.Z] == 0 {
		return gpu.Vec4{1, 1, 1, 1}
	}

	l := light.Sub(position).Normalize()
	diffuse := gpu.Clamp(l.Dot(n), 0, 1)

	if n[gpu.Y] < 0 {
		return gpu.Vec4{0, diffuse, 0, 1}
	}

	v := position.Sub(camera).Normalize()
	r := gpu.Reflect(v, n)
	specular := specularFactor(r.Dot(l))

	// Diffuse color is lerp(green, white, t) = (t, 1, t).
	t := n[gpu.Y] * n[gpu.Y]

	red := gpu.Clamp(t*diffuse+specular, 0, 1)
	green := gpu.Clamp(diffuse+specular, 0, 1)

	return gpu.Vec4{red, green, red, 1}
}

func specularFactor(cosine float32) float32 {
	switch {
	case cosine <= 0:
		return 0
	case cosine >= 1:
		return 1
	default:
		return math32.Pow(cosine, Shininess)
	}
}
