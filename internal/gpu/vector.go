package gpu

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3
type Vec4 = mgl32.Vec4
type Mat4 = mgl32.Mat4

const (
	X = 0
	Y = 1
	Z = 2
	W = 3
)

// Reflect mirrors the incident vector i about the normal n. The normal is
// expected to be unit length.
func Reflect(i, n Vec3) Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

func Clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// lerp4 interpolates every component of two four-wide values.
func lerp4(a, b [4]float32, factor float32) [4]float32 {
	return [4]float32{
		a[X]*(1-factor) + b[X]*factor,
		a[Y]*(1-factor) + b[Y]*factor,
		a[Z]*(1-factor) + b[Z]*factor,
		a[W]*(1-factor) + b[W]*factor,
	}
}
