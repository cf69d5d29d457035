// Package render draws a scene with the Phong program on the software
// pipeline.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samuelscerri/polygoncore/internal/gpu"
	"github.com/samuelscerri/polygoncore/internal/mesh"
	"github.com/samuelscerri/polygoncore/internal/phong"
	"github.com/samuelscerri/polygoncore/internal/scene"
)

type model struct {
	name     string
	vertices []gpu.VertexInput
	indices  []uint32
}

type Renderer struct {
	scene    *scene.Scene
	logger   *slog.Logger
	uniforms *gpu.Uniforms
	pipeline *gpu.Pipeline
	models   []model
}

// New loads every mesh in the scene and binds the Phong program.
func New(sc *scene.Scene, logger *slog.Logger) (*Renderer, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Renderer{
		scene:    sc,
		logger:   logger,
		uniforms: gpu.NewUniforms(),
	}

	if err := r.setCamera(sc.Camera); err != nil {
		return nil, err
	}

	bindings, err := phong.Bind(r.uniforms)
	if err != nil {
		return nil, err
	}

	r.pipeline = &gpu.Pipeline{
		Program:       bindings.Program(),
		Uniforms:      r.uniforms,
		Target:        gpu.NewFramebuffer(sc.Width, sc.Height),
		Workers:       sc.Workers,
		TileSize:      sc.Tile,
		CullBackFaces: *sc.Cull,
	}

	for i, object := range sc.Objects {
		m, err := loadMesh(object)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		m.Transform(object.Scale, object.Translate)

		r.models = append(r.models, model{
			name:     object.Mesh,
			vertices: m.Vertices(),
			indices:  m.Indices,
		})

		logger.Debug("loaded mesh", "object", i, "mesh", object.Mesh, "vertices", len(m.Positions), "triangles", m.TriangleCount())
	}

	return r, nil
}

func loadMesh(object scene.Object) (*mesh.Mesh, error) {
	switch object.Mesh {
	case scene.MeshSphere:
		return mesh.Sphere(object.Radius, object.Stacks, object.Slices), nil
	case scene.MeshPlane:
		return mesh.Plane(object.Size), nil
	default:
		return mesh.LoadOBJ(object.Mesh)
	}
}

func (r *Renderer) setCamera(camera scene.Camera) error {
	for _, err := range []error{
		r.uniforms.SetMat4(phong.ViewMatrix, camera.View()),
		r.uniforms.SetMat4(phong.ProjectionMatrix, r.scene.Projection()),
		r.uniforms.SetVec3(phong.CameraPosition, camera.Position),
		r.uniforms.SetVec3(phong.LightPosition, r.scene.Light.Position),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Target() *gpu.Framebuffer {
	return r.pipeline.Target
}

func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// Frame clears the target and draws every model with the camera orbited by
// angle degrees around its target.
func (r *Renderer) Frame(ctx context.Context, angle float32) (gpu.Stats, error) {
	start := time.Now()

	if err := r.setCamera(r.scene.Orbit(angle)); err != nil {
		return gpu.Stats{}, err
	}

	target := r.pipeline.Target
	background := r.scene.Background
	target.Clear(background[0], background[1], background[2])
	target.ClearDepth()

	var total gpu.Stats
	for _, m := range r.models {
		stats, err := r.pipeline.Draw(ctx, m.vertices, m.indices)
		if err != nil {
			return total, fmt.Errorf("draw %s: %w", m.name, err)
		}

		total.Add(stats)
	}

	r.logger.Debug("frame rendered",
		"angle", angle,
		"triangles", total.Triangles,
		"culled", total.Culled,
		"fragments", total.Fragments,
		"elapsed", time.Since(start),
	)

	return total, nil
}
