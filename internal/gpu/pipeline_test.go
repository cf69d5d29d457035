package gpu

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/chewxy/math32"
)

// flatProgram treats slot 0 as a clip-space position with w = 1 and slot 1
// as the fragment color.
func flatProgram() *Program {
	return &Program{
		Vertex: func(out *VertexOutput, in *VertexInput, u *Uniforms) {
			out.Position = in.Vec3(0).Vec4(1)
			out.SetVec3(0, in.Vec3(1))
		},
		Fragment: func(out *FragmentOutput, in *FragmentInput, u *Uniforms) {
			out.Color = in.Vec3(0).Vec4(1)
		},
		Varyings: 1,
	}
}

func vertex(position, color Vec3) VertexInput {
	var v VertexInput
	v.SetVec3(0, position)
	v.SetVec3(1, color)
	return v
}

// quad covers the whole viewport at the given depth, wound counter-clockwise.
func quad(z float32, c Vec3) []VertexInput {
	return []VertexInput{
		vertex(Vec3{-1, -1, z}, c),
		vertex(Vec3{1, -1, z}, c),
		vertex(Vec3{1, 1, z}, c),
		vertex(Vec3{-1, 1, z}, c),
	}
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

func newTestPipeline(width, height int) *Pipeline {
	fb := NewFramebuffer(width, height)
	fb.Clear(0, 0, 0)

	return &Pipeline{
		Program:       flatProgram(),
		Uniforms:      NewUniforms(),
		Target:        fb,
		Workers:       3,
		TileSize:      3,
		CullBackFaces: true,
	}
}

func TestDrawFullscreenQuad(t *testing.T) {
	p := newTestPipeline(8, 8)

	stats, err := p.Draw(context.Background(), quad(0, Vec3{1, 0, 0}), quadIndices)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if stats.Vertices != 4 || stats.Triangles != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Fragments != 64 {
		t.Fatalf("expected every pixel shaded once, got %d fragments", stats.Fragments)
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := p.Target.At(x, y); got != (color.RGBA{255, 0, 0, 255}) {
				t.Fatalf("pixel (%d, %d) = %v", x, y, got)
			}
		}
	}
}

func TestDrawCullsBackFaces(t *testing.T) {
	p := newTestPipeline(8, 8)

	stats, err := p.Draw(context.Background(), quad(0, Vec3{1, 1, 1}), []uint32{0, 2, 1, 0, 3, 2})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Culled != 2 || stats.Fragments != 0 {
		t.Fatalf("expected both triangles culled, got %+v", stats)
	}

	p.CullBackFaces = false
	stats, err = p.Draw(context.Background(), quad(0, Vec3{1, 1, 1}), []uint32{0, 2, 1, 0, 3, 2})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Fragments != 64 {
		t.Fatalf("expected clockwise quad to cover the target, got %+v", stats)
	}
}

func TestDrawDepthTest(t *testing.T) {
	for _, order := range [][]float32{{.5, -.5}, {-.5, .5}} {
		p := newTestPipeline(4, 4)

		for _, z := range order {
			c := Vec3{1, 0, 0}
			if z < 0 {
				c = Vec3{0, 1, 0}
			}
			if _, err := p.Draw(context.Background(), quad(z, c), quadIndices); err != nil {
				t.Fatalf("Draw: %v", err)
			}
		}

		if got := p.Target.At(2, 2); got != (color.RGBA{0, 255, 0, 255}) {
			t.Fatalf("order %v: expected nearer green quad, got %v", order, got)
		}
		if got := p.Target.Depth[2*4+2]; math32.Abs(got-.25) > 1e-6 {
			t.Fatalf("order %v: expected depth .25, got %v", order, got)
		}
	}
}

func TestDrawClipping(t *testing.T) {
	p := newTestPipeline(16, 16)

	partial := []VertexInput{
		vertex(Vec3{-1, -1, 0}, Vec3{1, 1, 1}),
		vertex(Vec3{1, -1, 0}, Vec3{1, 1, 1}),
		vertex(Vec3{0, 1, -3}, Vec3{1, 1, 1}),
	}

	stats, err := p.Draw(context.Background(), partial, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Clipped != 1 || stats.Fragments == 0 {
		t.Fatalf("expected a partially clipped triangle, got %+v", stats)
	}

	outside := []VertexInput{
		vertex(Vec3{2, -1, 0}, Vec3{1, 1, 1}),
		vertex(Vec3{3, -1, 0}, Vec3{1, 1, 1}),
		vertex(Vec3{3, 1, 0}, Vec3{1, 1, 1}),
	}

	stats, err = p.Draw(context.Background(), outside, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.Clipped != 1 || stats.Fragments != 0 {
		t.Fatalf("expected a fully clipped triangle, got %+v", stats)
	}
}

func TestDrawInterpolatesVaryings(t *testing.T) {
	p := newTestPipeline(2, 2)
	p.CullBackFaces = false

	vertices := []VertexInput{
		vertex(Vec3{-1, -1, 0}, Vec3{0, 0, 0}),
		vertex(Vec3{1, -1, 0}, Vec3{1, 0, 0}),
		vertex(Vec3{1, 1, 0}, Vec3{1, 1, 0}),
		vertex(Vec3{-1, 1, 0}, Vec3{0, 1, 0}),
	}

	if _, err := p.Draw(context.Background(), vertices, quadIndices); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// Pixel (1, 1) is the bottom right quarter; its center is at NDC (.5, -.5).
	got := p.Target.At(1, 1)
	if got.R != 191 || got.G != 64 || got.B != 0 {
		t.Fatalf("unexpected interpolated color %v", got)
	}
}

func TestDrawReadsUniformSnapshot(t *testing.T) {
	p := newTestPipeline(4, 4)
	if err := p.Uniforms.SetVec3("tint", Vec3{0, 1, 0}); err != nil {
		t.Fatalf("SetVec3: %v", err)
	}
	tint, _ := p.Uniforms.Location("tint")

	p.Program.Fragment = func(out *FragmentOutput, in *FragmentInput, u *Uniforms) {
		if u == p.Uniforms || !errors.Is(u.SetFloat("tint", 0), ErrReadOnly) {
			out.Color = Vec4{1, 0, 0, 1}
			return
		}
		out.Color = u.Vec3(tint).Vec4(1)
	}

	if _, err := p.Draw(context.Background(), quad(0, Vec3{}), quadIndices); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if got := p.Target.At(2, 2); got != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("pixel = %v, want the tint from a read only snapshot", got)
	}
}

func TestDrawInvalid(t *testing.T) {
	p := newTestPipeline(4, 4)
	vertices := quad(0, Vec3{1, 1, 1})

	tests := []struct {
		name    string
		indices []uint32
		program *Program
	}{
		{"partial triangle", []uint32{0, 1}, flatProgram()},
		{"index out of range", []uint32{0, 1, 4}, flatProgram()},
		{"missing fragment stage", quadIndices, &Program{Vertex: flatProgram().Vertex}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p.Program = tc.program
			if _, err := p.Draw(context.Background(), vertices, tc.indices); !errors.Is(err, ErrInvalidDraw) {
				t.Fatalf("expected ErrInvalidDraw, got %v", err)
			}
		})
	}
}

func TestDrawCancelled(t *testing.T) {
	p := newTestPipeline(4, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Draw(ctx, quad(0, Vec3{1, 1, 1}), quadIndices); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFramebuffer(t *testing.T) {
	fb := NewFramebuffer(5, 3)

	for _, depth := range fb.Depth {
		if depth != math32.MaxFloat32 {
			t.Fatalf("expected cleared depth, got %v", depth)
		}
	}

	fb.Clear(16, 32, 64)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if got := fb.At(x, y); got != (color.RGBA{16, 32, 64, 255}) {
				t.Fatalf("pixel (%d, %d) = %v after clear", x, y, got)
			}
		}
	}

	fb.Set(4, 2, Vec4{2, -1, .5, 1})
	if got := fb.At(4, 2); got != (color.RGBA{255, 0, 128, 255}) {
		t.Fatalf("Set did not clamp, got %v", got)
	}

	var buf bytes.Buffer
	if err := fb.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected image bounds %v", img.Bounds())
	}
}
