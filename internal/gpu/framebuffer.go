package gpu

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

const (
	R = 0
	G = 1
	B = 2
	A = 3
)

const bytesPerPixel = 4

// Framebuffer is an RGBA8 color plane with a matching float depth plane.
// Rows are stored top to bottom.
type Framebuffer struct {
	Width, Height int

	Color []byte
	Depth []float32
}

func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Color:  make([]byte, width*height*bytesPerPixel),
		Depth:  make([]float32, width*height),
	}
	fb.ClearDepth()
	return fb
}

func (fb *Framebuffer) Set(x, y int, c Vec4) {
	var position int = (y*fb.Width + x) * bytesPerPixel

	fb.Color[position+R] = toByte(c[R])
	fb.Color[position+G] = toByte(c[G])
	fb.Color[position+B] = toByte(c[B])
	fb.Color[position+A] = toByte(c[A])
}

func (fb *Framebuffer) At(x, y int) color.RGBA {
	var position int = (y*fb.Width + x) * bytesPerPixel

	return color.RGBA{
		fb.Color[position+R],
		fb.Color[position+G],
		fb.Color[position+B],
		fb.Color[position+A],
	}
}

func (fb *Framebuffer) clearRows(from, to int, r, g, b byte) {
	for p := from * fb.Width * bytesPerPixel; p < to*fb.Width*bytesPerPixel; p += bytesPerPixel {
		fb.Color[p+R] = r
		fb.Color[p+G] = g
		fb.Color[p+B] = b
		fb.Color[p+A] = 255
	}
}

// Clear fills the color plane with an opaque color, one row band per CPU.
func (fb *Framebuffer) Clear(r, g, b byte) {
	var wg sync.WaitGroup

	cores := runtime.NumCPU()
	band := (fb.Height + cores - 1) / cores

	for from := 0; from < fb.Height; from += band {
		to := from + band
		if to > fb.Height {
			to = fb.Height
		}

		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			fb.clearRows(from, to, r, g, b)
		}(from, to)
	}

	wg.Wait()
}

func (fb *Framebuffer) ClearDepth() {
	vek32.Repeat_Into(fb.Depth, math32.MaxFloat32, len(fb.Depth))
}

// Image wraps the color plane without copying it.
func (fb *Framebuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Color,
		Stride: fb.Width * bytesPerPixel,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.Image())
}

func toByte(v float32) byte {
	return byte(Clamp(v, 0, 1)*255 + .5)
}
