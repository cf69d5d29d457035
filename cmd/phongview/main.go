package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/samuelscerri/polygoncore/internal/gpu"
	"github.com/samuelscerri/polygoncore/internal/render"
	"github.com/samuelscerri/polygoncore/internal/scene"
)

const (
	orbitSpeed = 2
	dollySpeed = .05
	minimumGap = .5
)

type Game struct {
	renderer *render.Renderer
	logger   *slog.Logger

	angle float32
	stats gpu.Stats
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.angle += orbitSpeed
	}

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.angle -= orbitSpeed
	}

	camera := &g.renderer.Scene().Camera

	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		camera.Raise(dollySpeed)
	}

	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		camera.Raise(-dollySpeed)
	}

	offset := camera.Position.Sub(camera.Target)

	if ebiten.IsKeyPressed(ebiten.KeyW) && offset.Len() > minimumGap {
		camera.Position = camera.Position.Sub(offset.Normalize().Mul(dollySpeed))
	}

	if ebiten.IsKeyPressed(ebiten.KeyS) {
		camera.Position = camera.Position.Add(offset.Normalize().Mul(dollySpeed))
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	stats, err := g.renderer.Frame(context.Background(), g.angle)
	if err != nil {
		g.logger.Error("frame failed", "error", err)
		return
	}
	g.stats = stats

	screen.WritePixels(g.renderer.Target().Color)

	ebitenutil.DebugPrint(screen, strconv.Itoa(int(ebiten.ActualFPS()))+" fps\n"+
		strconv.Itoa(g.stats.Triangles)+" triangles\n"+
		strconv.Itoa(g.stats.Fragments)+" fragments")
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	target := g.renderer.Target()
	return target.Width, target.Height
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	scenePath := fs.String("scene", "", "Scene file (YAML); the built in scene is used when empty")
	scale := fs.Int("scale", 2, "Window size as a multiple of the render size")
	debug := fs.Bool("debug", false, "Log every frame")

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sc := scene.Default()
	if *scenePath != "" {
		var err error
		if sc, err = scene.Load(*scenePath); err != nil {
			fmt.Fprintf(os.Stderr, "phongview: %v\n", err)
			os.Exit(1)
		}
	}

	r, err := render.New(sc, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phongview: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(sc.Width*(*scale), sc.Height*(*scale))
	ebiten.SetWindowTitle("Polygon Core - Phong")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(&Game{renderer: r, logger: logger}); err != nil {
		logger.Error("viewer stopped", "error", err)
		os.Exit(1)
	}
}
