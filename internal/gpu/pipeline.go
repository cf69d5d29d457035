package gpu

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const DefaultTileSize = 64

var ErrInvalidDraw = errors.New("invalid draw call")

type Stats struct {
	Vertices  int
	Triangles int
	Clipped   int
	Culled    int
	Fragments int
}

func (s *Stats) Add(other Stats) {
	s.Vertices += other.Vertices
	s.Triangles += other.Triangles
	s.Clipped += other.Clipped
	s.Culled += other.Culled
	s.Fragments += other.Fragments
}

// Pipeline runs a Program over indexed triangle lists and writes the shaded
// fragments into Target.
type Pipeline struct {
	Program  *Program
	Uniforms *Uniforms
	Target   *Framebuffer

	// Workers bounds the goroutines used per stage. Zero means one per CPU.
	Workers int
	// TileSize is the edge length in pixels of a rasterization tile.
	TileSize int

	CullBackFaces bool
}

type tile struct {
	x, y, width, height int

	triangles []*Triangle
}

func (p *Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.NumCPU()
}

func (p *Pipeline) tileSize() int {
	if p.TileSize > 0 {
		return p.TileSize
	}
	return DefaultTileSize
}

func (p *Pipeline) varyings() int {
	return clampInt(p.Program.Varyings, 0, MaxAttributes)
}

// parallel splits [0, n) into one contiguous chunk per worker.
func (p *Pipeline) parallel(ctx context.Context, n int, fn func(chunk, from, to int) error) error {
	if n == 0 {
		return ctx.Err()
	}

	workers := p.workers()
	size := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for from := 0; from < n; from += size {
		from := from
		chunk, to := from/size, min(from+size, n)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(chunk, from, to)
		})
	}

	return g.Wait()
}

func (p *Pipeline) validate(vertices []VertexInput, indices []uint32) error {
	switch {
	case p.Program == nil || p.Program.Vertex == nil || p.Program.Fragment == nil:
		return fmt.Errorf("%w: program needs a vertex and a fragment shader", ErrInvalidDraw)
	case p.Uniforms == nil:
		return fmt.Errorf("%w: no uniforms bound", ErrInvalidDraw)
	case p.Target == nil || p.Target.Width <= 0 || p.Target.Height <= 0:
		return fmt.Errorf("%w: no render target", ErrInvalidDraw)
	case len(indices)%3 != 0:
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrInvalidDraw, len(indices))
	}

	for position, index := range indices {
		if int(index) >= len(vertices) {
			return fmt.Errorf("%w: index %d at %d is out of range for %d vertices", ErrInvalidDraw, index, position, len(vertices))
		}
	}

	return nil
}

// Draw shades one indexed triangle list. Invocations of both stages run
// concurrently, so shaders must not share mutable state.
func (p *Pipeline) Draw(ctx context.Context, vertices []VertexInput, indices []uint32) (Stats, error) {
	if err := p.validate(vertices, indices); err != nil {
		return Stats{}, err
	}

	uniforms := p.Uniforms.Snapshot()

	outputs, err := p.processVertices(ctx, vertices, uniforms)
	if err != nil {
		return Stats{}, err
	}

	triangles, stats, err := p.assemble(ctx, outputs, indices)
	if err != nil {
		return stats, err
	}
	stats.Vertices = len(vertices)

	fragments, err := p.rasterize(ctx, p.bin(triangles), uniforms)
	stats.Fragments = fragments

	return stats, err
}

func (p *Pipeline) processVertices(ctx context.Context, vertices []VertexInput, uniforms *Uniforms) ([]clipVertex, error) {
	outputs := make([]clipVertex, len(vertices))

	err := p.parallel(ctx, len(vertices), func(_, from, to int) error {
		var out VertexOutput

		for index := from; index < to; index++ {
			out = VertexOutput{}
			p.Program.Vertex(&out, &vertices[index], uniforms)

			outputs[index] = clipVertex{position: out.Position, attributes: out.Attributes}
		}

		return nil
	})

	return outputs, err
}

func (p *Pipeline) assemble(ctx context.Context, outputs []clipVertex, indices []uint32) ([]*Triangle, Stats, error) {
	count := len(indices) / 3
	workers := p.workers()

	results := make([][]*Triangle, workers)
	stats := make([]Stats, workers)

	width, height, varyings := p.Target.Width, p.Target.Height, p.varyings()

	err := p.parallel(ctx, count, func(chunk, from, to int) error {
		for index := from; index < to; index++ {
			source := [3]clipVertex{
				outputs[indices[index*3]],
				outputs[indices[index*3+1]],
				outputs[indices[index*3+2]],
			}

			stats[chunk].Triangles++

			vertices := source[:]
			if !source[0].inside() || !source[1].inside() || !source[2].inside() {
				stats[chunk].Clipped++
				vertices = clipTriangle(source, varyings)
			}

			if len(vertices) < 3 {
				continue
			}

			projected := make([]screenVertex, len(vertices))
			for i := range vertices {
				if vertices[i].position[W] <= 0 {
					projected = nil
					break
				}
				projected[i] = toScreenSpace(&vertices[i], width, height, varyings)
			}

			for i := 0; i+2 < len(projected); i++ {
				triangle := newTriangle(projected[0], projected[i+1], projected[i+2], width, height)

				if triangle.area == 0 {
					continue
				}
				if p.CullBackFaces && !triangle.frontFacing() {
					stats[chunk].Culled++
					continue
				}

				results[chunk] = append(results[chunk], &triangle)
			}
		}

		return nil
	})

	var total Stats
	var triangles []*Triangle

	for chunk := range results {
		total.Add(stats[chunk])
		triangles = append(triangles, results[chunk]...)
	}

	return triangles, total, err
}

// bin distributes triangles to every tile their bounds touch, keeping
// submission order within each tile.
func (p *Pipeline) bin(triangles []*Triangle) []tile {
	size := p.tileSize()
	columns := (p.Target.Width + size - 1) / size
	rows := (p.Target.Height + size - 1) / size

	tiles := make([]tile, columns*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			tiles[y*columns+x] = tile{
				x:      x * size,
				y:      y * size,
				width:  min(size, p.Target.Width-x*size),
				height: min(size, p.Target.Height-y*size),
			}
		}
	}

	for _, triangle := range triangles {
		for y := triangle.minY / size; y <= triangle.maxY/size; y++ {
			for x := triangle.minX / size; x <= triangle.maxX/size; x++ {
				tiles[y*columns+x].triangles = append(tiles[y*columns+x].triangles, triangle)
			}
		}
	}

	return tiles
}

func (p *Pipeline) rasterize(ctx context.Context, tiles []tile, uniforms *Uniforms) (int, error) {
	fragments := make([]int, p.workers())

	err := p.parallel(ctx, len(tiles), func(chunk, from, to int) error {
		for index := from; index < to; index++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fragments[chunk] += p.rasterizeTile(&tiles[index], uniforms)
		}
		return nil
	})

	var total int
	for _, count := range fragments {
		total += count
	}

	return total, err
}

// rasterizeTile owns every pixel of its tile, so no locking is needed on the
// color or depth planes.
func (p *Pipeline) rasterizeTile(t *tile, uniforms *Uniforms) (fragments int) {
	var in FragmentInput
	var out FragmentOutput

	varyings := p.varyings()
	target := p.Target

	for _, triangle := range t.triangles {
		minX, maxX := max(triangle.minX, t.x), min(triangle.maxX, t.x+t.width-1)
		minY, maxY := max(triangle.minY, t.y), min(triangle.maxY, t.y+t.height-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				var centerX, centerY float32 = float32(x) + .5, float32(y) + .5

				inside, s, tt, w := triangle.Inside(centerX, centerY)
				if !inside {
					continue
				}

				var depth float32 = s*triangle.vertices[0].depth + tt*triangle.vertices[1].depth + w*triangle.vertices[2].depth
				var position int = y*target.Width + x

				if depth >= target.Depth[position] {
					continue
				}

				triangle.fragment(&in, centerX, centerY, s, tt, w, varyings)

				out = FragmentOutput{}
				p.Program.Fragment(&out, &in, uniforms)

				target.Depth[position] = depth
				target.Set(x, y, out.Color)
				fragments++
			}
		}
	}

	return fragments
}
