// Package scene describes what the renderer draws: the viewport, the camera,
// a single point light and the meshes in world space.
package scene

import (
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/samuelscerri/polygoncore/internal/gpu"
)

var ErrInvalid = errors.New("invalid scene")

// Built in mesh names; anything else is read as an OBJ path.
const (
	MeshSphere = "sphere"
	MeshPlane  = "plane"
)

type Camera struct {
	Position gpu.Vec3 `yaml:"position"`
	Target   gpu.Vec3 `yaml:"target"`
	Up       gpu.Vec3 `yaml:"up"`
	FOV      float32  `yaml:"fov"`
	Near     float32  `yaml:"near"`
	Far      float32  `yaml:"far"`
}

type Light struct {
	Position gpu.Vec3 `yaml:"position"`
}

type Object struct {
	Mesh      string   `yaml:"mesh"`
	Scale     float32  `yaml:"scale"`
	Translate gpu.Vec3 `yaml:"translate"`

	// Sphere tessellation.
	Radius float32 `yaml:"radius"`
	Stacks int     `yaml:"stacks"`
	Slices int     `yaml:"slices"`

	// Plane edge length.
	Size float32 `yaml:"size"`
}

type Scene struct {
	Name       string   `yaml:"name"`
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Workers    int      `yaml:"workers"`
	Tile       int      `yaml:"tile"`
	Cull       *bool    `yaml:"cull"`
	Background [3]uint8 `yaml:"background"`

	Camera  Camera   `yaml:"camera"`
	Light   Light    `yaml:"light"`
	Objects []Object `yaml:"objects"`
}

// Default is a lit sphere resting on a floor.
func Default() *Scene {
	sc := &Scene{
		Name:       "default",
		Background: [3]uint8{16, 16, 16},
		Camera: Camera{
			Position: gpu.Vec3{0, 1.5, 4},
		},
		Light: Light{Position: gpu.Vec3{3, 5, 2}},
		Objects: []Object{
			{Mesh: MeshSphere},
			{Mesh: MeshPlane, Size: 6, Translate: gpu.Vec3{0, -1, 0}},
		},
	}
	sc.applyDefaults()
	return sc
}

func Parse(data []byte) (*Scene, error) {
	sc := &Scene{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

func (sc *Scene) applyDefaults() {
	if sc.Width == 0 {
		sc.Width = 640
	}
	if sc.Height == 0 {
		sc.Height = 360
	}
	if sc.Tile == 0 {
		sc.Tile = gpu.DefaultTileSize
	}
	if sc.Cull == nil {
		cull := true
		sc.Cull = &cull
	}
	if sc.Camera.Up == (gpu.Vec3{}) {
		sc.Camera.Up = gpu.Vec3{0, 1, 0}
	}
	if sc.Camera.FOV == 0 {
		sc.Camera.FOV = 60
	}
	if sc.Camera.Near == 0 {
		sc.Camera.Near = .1
	}
	if sc.Camera.Far == 0 {
		sc.Camera.Far = 100
	}

	for i := range sc.Objects {
		object := &sc.Objects[i]
		if object.Scale == 0 {
			object.Scale = 1
		}
		if object.Radius == 0 {
			object.Radius = 1
		}
		if object.Stacks == 0 {
			object.Stacks = 24
		}
		if object.Slices == 0 {
			object.Slices = 48
		}
		if object.Size == 0 {
			object.Size = 4
		}
	}
}

func (sc *Scene) Validate() error {
	switch {
	case sc.Width <= 0 || sc.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, sc.Width, sc.Height)
	case sc.Workers < 0:
		return fmt.Errorf("%w: negative worker count", ErrInvalid)
	case sc.Tile < 0:
		return fmt.Errorf("%w: negative tile size", ErrInvalid)
	case sc.Camera.FOV <= 0 || sc.Camera.FOV >= 180:
		return fmt.Errorf("%w: field of view %v must be within (0, 180)", ErrInvalid, sc.Camera.FOV)
	case sc.Camera.Near <= 0 || sc.Camera.Near >= sc.Camera.Far:
		return fmt.Errorf("%w: clip range [%v, %v]", ErrInvalid, sc.Camera.Near, sc.Camera.Far)
	case sc.Camera.Position == sc.Camera.Target:
		return fmt.Errorf("%w: camera looks at its own position", ErrInvalid)
	case len(sc.Objects) == 0:
		return fmt.Errorf("%w: no objects", ErrInvalid)
	}

	for i, object := range sc.Objects {
		switch {
		case object.Mesh == "":
			return fmt.Errorf("%w: object %d has no mesh", ErrInvalid, i)
		case object.Scale <= 0:
			return fmt.Errorf("%w: object %d scale must be positive", ErrInvalid, i)
		}
	}

	return nil
}

func (sc *Scene) Aspect() float32 {
	return float32(sc.Width) / float32(sc.Height)
}

func (c Camera) View() gpu.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// maxAlignment bounds the cosine between the view direction and Up; LookAtV
// degenerates as they become parallel.
const maxAlignment = .985

// Raise moves the camera along Up by delta. Moves that would leave it looking
// almost straight along Up are ignored.
func (c *Camera) Raise(delta float32) {
	up := c.Up.Normalize()
	position := c.Position.Add(up.Mul(delta))

	offset := position.Sub(c.Target)
	if offset.Len() == 0 || math32.Abs(offset.Normalize().Dot(up)) > maxAlignment {
		return
	}
	c.Position = position
}

func (sc *Scene) View() gpu.Mat4 {
	return sc.Camera.View()
}

func (sc *Scene) Projection() gpu.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(sc.Camera.FOV), sc.Aspect(), sc.Camera.Near, sc.Camera.Far)
}

// Orbit returns a copy of the camera rotated around its target about the
// world Y axis by angle degrees.
func (sc *Scene) Orbit(angle float32) Camera {
	camera := sc.Camera
	offset := camera.Position.Sub(camera.Target)

	var radians float32 = angle * math32.Pi / 180
	sin, cos := math32.Sin(radians), math32.Cos(radians)

	camera.Position = camera.Target.Add(gpu.Vec3{
		offset[gpu.X]*cos + offset[gpu.Z]*sin,
		offset[gpu.Y],
		-offset[gpu.X]*sin + offset[gpu.Z]*cos,
	})

	return camera
}
