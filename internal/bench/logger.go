// Package bench records frame rates so runs on different machines and worker
// counts can be compared.
package bench

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/cpuid/v2"
)

type Logger struct {
	File *os.File

	CurrentFPS float64
}

// Path returns <directory>/<cpu brand>/<scene>/<workers>.txt.
func Path(directory, scene string, workers int) string {
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = "unknown"
	}

	return filepath.Join(directory, sanitize(brand), sanitize(scene), strconv.Itoa(workers)+".txt")
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, filepath.Base(name))
}

func NewLogger(directory, scene string, workers int) (*Logger, error) {
	path := Path(directory, scene, workers)

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}

	return &Logger{File: file}, nil
}

// Log appends the whole frame rate for a frame time, skipping repeats of the
// previous value.
func (logger *Logger) Log(frame time.Duration) error {
	if frame <= 0 {
		return nil
	}

	framerate := math.Floor(float64(time.Second) / float64(frame))
	if framerate <= 0 || framerate == logger.CurrentFPS {
		return nil
	}

	logger.CurrentFPS = framerate
	_, err := fmt.Fprintln(logger.File, framerate)
	return err
}

func (logger *Logger) Close() error {
	return logger.File.Close()
}
