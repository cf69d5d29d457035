package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/viterin/vek/vek32"

	"github.com/samuelscerri/polygoncore/internal/bench"
	"github.com/samuelscerri/polygoncore/internal/render"
	"github.com/samuelscerri/polygoncore/internal/scene"
)

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// frameName numbers output files when more than one frame is rendered.
func frameName(out string, frame, frames int) string {
	if frames == 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(out, ext), frame, ext)
}

func writeFrame(r *render.Renderer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := r.Target().WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	scenePath := fs.String("scene", "", "Scene file (YAML); the built in scene is used when empty")
	out := fs.String("out", "phong.png", "Output PNG path")
	frames := fs.Int("frames", 1, "Number of frames for a full camera orbit")
	workers := fs.Int("workers", -1, "Worker goroutines per stage, 0 for one per CPU (overrides the scene)")
	width := fs.Int("width", 0, "Output width (overrides the scene)")
	height := fs.Int("height", 0, "Output height (overrides the scene)")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	benchDir := fs.String("bench-dir", "", "Directory for frame rate logs")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", *frames)
	}

	sc := scene.Default()
	if *scenePath != "" {
		if sc, err = scene.Load(*scenePath); err != nil {
			return err
		}
	}
	if *workers >= 0 {
		sc.Workers = *workers
	}
	if *width > 0 {
		sc.Width = *width
	}
	if *height > 0 {
		sc.Height = *height
	}

	vek32.SetAcceleration(true)
	logger.Debug("vector acceleration", "info", vek32.Info())

	r, err := render.New(sc, logger)
	if err != nil {
		return err
	}

	var benchLog *bench.Logger
	if *benchDir != "" {
		if benchLog, err = bench.NewLogger(*benchDir, sc.Name, sc.Workers); err != nil {
			return err
		}
		defer benchLog.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var bar *progressbar.ProgressBar
	if *frames > 1 {
		bar = progressbar.Default(int64(*frames), "rendering")
	}

	logger.Info("rendering", "scene", sc.Name, "width", sc.Width, "height", sc.Height, "frames", *frames)

	for frame := 0; frame < *frames; frame++ {
		angle := 360 * float32(frame) / float32(*frames)

		start := time.Now()
		stats, err := r.Frame(ctx, angle)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if benchLog != nil {
			if err := benchLog.Log(elapsed); err != nil {
				return err
			}
		}

		path := frameName(*out, frame, *frames)
		if err := writeFrame(r, path); err != nil {
			return err
		}

		if bar != nil {
			bar.Add(1)
		} else {
			logger.Info("wrote frame",
				"path", path,
				"triangles", stats.Triangles,
				"fragments", stats.Fragments,
				"elapsed", elapsed,
			)
		}
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "phong: %v\n", err)
		os.Exit(1)
	}
}
