package gpu

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUniformsLocation(t *testing.T) {
	u := NewUniforms()

	if err := u.SetMat4("viewMatrix", mgl32.Translate3D(1, 2, 3)); err != nil {
		t.Fatalf("SetMat4: %v", err)
	}
	if err := u.SetVec3("lightPosition", Vec3{4, 5, 6}); err != nil {
		t.Fatalf("SetVec3: %v", err)
	}

	view, err := u.Location("viewMatrix")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	light, err := u.Location("lightPosition")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}

	if got := u.Kind(view); got != UniformMat4 {
		t.Fatalf("expected mat4 kind, got %s", got)
	}
	if got := u.Mat4(view); got != mgl32.Translate3D(1, 2, 3) {
		t.Fatalf("unexpected matrix %v", got)
	}
	if got := u.Vec3(light); got != (Vec3{4, 5, 6}) {
		t.Fatalf("unexpected vector %v", got)
	}

	if err := u.SetVec3("lightPosition", Vec3{7, 8, 9}); err != nil {
		t.Fatalf("SetVec3 overwrite: %v", err)
	}
	if got := u.Vec3(light); got != (Vec3{7, 8, 9}) {
		t.Fatalf("overwrite did not keep the location, got %v", got)
	}
}

func TestUniformsErrors(t *testing.T) {
	u := NewUniforms()

	if _, err := u.Location("missing"); !errors.Is(err, ErrUnknownUniform) {
		t.Fatalf("expected ErrUnknownUniform, got %v", err)
	}

	if err := u.SetFloat("shininess", 40); err != nil {
		t.Fatalf("SetFloat: %v", err)
	}
	shininess, err := u.Location("shininess")
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if got := u.Float(shininess); got != 40 {
		t.Fatalf("Float = %v, want 40", got)
	}
	if err := u.SetVec3("shininess", Vec3{}); !errors.Is(err, ErrUniformType) {
		t.Fatalf("expected ErrUniformType, got %v", err)
	}

	if got := u.Kind(Location(42)); got != UniformNone {
		t.Fatalf("expected no kind for a bad location, got %s", got)
	}
	if got := u.Mat4(Location(-1)); got != (Mat4{}) {
		t.Fatalf("expected zero matrix for a bad location, got %v", got)
	}
}

func TestUniformsSnapshot(t *testing.T) {
	u := NewUniforms()
	if err := u.SetVec3("light", Vec3{1, 2, 3}); err != nil {
		t.Fatalf("SetVec3: %v", err)
	}
	light, _ := u.Location("light")

	snapshot := u.Snapshot()

	if err := u.SetVec3("light", Vec3{4, 5, 6}); err != nil {
		t.Fatalf("SetVec3: %v", err)
	}
	if err := u.SetFloat("added", 1); err != nil {
		t.Fatalf("SetFloat: %v", err)
	}

	if got := snapshot.Vec3(light); got != (Vec3{1, 2, 3}) {
		t.Fatalf("snapshot saw a later write: %v", got)
	}
	if got := snapshot.Kind(light); got != UniformVec3 {
		t.Fatalf("snapshot kind = %s", got)
	}
	if _, err := snapshot.Location("added"); !errors.Is(err, ErrUnknownUniform) {
		t.Fatalf("snapshot saw a later uniform: %v", err)
	}
	if err := snapshot.SetFloat("added", 2); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name     string
		i, n     Vec3
		expected Vec3
	}{
		{"head on", Vec3{0, -1, 0}, Vec3{0, 1, 0}, Vec3{0, 1, 0}},
		{"grazing", Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{1, 0, 0}},
		{"diagonal", Vec3{1, -1, 0}, Vec3{0, 1, 0}, Vec3{1, 1, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reflect(tc.i, tc.n); !got.ApproxEqual(tc.expected) {
				t.Errorf("Reflect(%v, %v) = %v, want %v", tc.i, tc.n, got, tc.expected)
			}
		})
	}
}
