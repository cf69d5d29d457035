package gpu

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	ErrUnknownUniform = errors.New("unknown uniform")
	ErrUniformType    = errors.New("uniform type mismatch")
	ErrReadOnly       = errors.New("uniforms are read only")
)

type UniformKind uint8

const (
	UniformNone UniformKind = iota
	UniformFloat
	UniformVec3
	UniformMat4
)

func (k UniformKind) String() string {
	switch k {
	case UniformFloat:
		return "float"
	case UniformVec3:
		return "vec3"
	case UniformMat4:
		return "mat4"
	default:
		return "none"
	}
}

// Location is a resolved handle to a uniform. It stays valid for the lifetime
// of the Uniforms it came from.
type Location int

type uniform struct {
	kind UniformKind
	f    float32
	vec  Vec3
	mat  Mat4
}

// Uniforms holds the values shared by every invocation of a draw call.
type Uniforms struct {
	mu     sync.RWMutex
	names  map[string]Location
	values []uniform

	// Snapshots never change, so their reads skip the lock.
	frozen bool
}

func NewUniforms() *Uniforms {
	return &Uniforms{names: make(map[string]Location)}
}

// Snapshot copies the current values into a read only set. A draw reads from
// a snapshot so its workers never touch the shared lock.
func (u *Uniforms) Snapshot() *Uniforms {
	u.rlock()
	defer u.runlock()

	return &Uniforms{
		names:  maps.Clone(u.names),
		values: slices.Clone(u.values),
		frozen: true,
	}
}

func (u *Uniforms) rlock() {
	if !u.frozen {
		u.mu.RLock()
	}
}

func (u *Uniforms) runlock() {
	if !u.frozen {
		u.mu.RUnlock()
	}
}

func (u *Uniforms) set(name string, value uniform) error {
	if u.frozen {
		return fmt.Errorf("%w: cannot set %q on a snapshot", ErrReadOnly, name)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if loc, ok := u.names[name]; ok {
		if existing := u.values[loc].kind; existing != value.kind {
			return fmt.Errorf("%w: %q is %s, not %s", ErrUniformType, name, existing, value.kind)
		}
		u.values[loc] = value
		return nil
	}

	u.names[name] = Location(len(u.values))
	u.values = append(u.values, value)
	return nil
}

func (u *Uniforms) SetFloat(name string, value float32) error {
	return u.set(name, uniform{kind: UniformFloat, f: value})
}

func (u *Uniforms) SetVec3(name string, value Vec3) error {
	return u.set(name, uniform{kind: UniformVec3, vec: value})
}

func (u *Uniforms) SetMat4(name string, value Mat4) error {
	return u.set(name, uniform{kind: UniformMat4, mat: value})
}

// Location resolves a uniform name. Shaders should resolve once at setup and
// keep the handle.
func (u *Uniforms) Location(name string) (Location, error) {
	u.rlock()
	defer u.runlock()

	loc, ok := u.names[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownUniform, name)
	}
	return loc, nil
}

func (u *Uniforms) Kind(loc Location) UniformKind {
	u.rlock()
	defer u.runlock()

	if loc < 0 || int(loc) >= len(u.values) {
		return UniformNone
	}
	return u.values[loc].kind
}

func (u *Uniforms) get(loc Location) uniform {
	u.rlock()
	defer u.runlock()

	if loc < 0 || int(loc) >= len(u.values) {
		return uniform{}
	}
	return u.values[loc]
}

func (u *Uniforms) Float(loc Location) float32 {
	return u.get(loc).f
}

func (u *Uniforms) Vec3(loc Location) Vec3 {
	return u.get(loc).vec
}

func (u *Uniforms) Mat4(loc Location) Mat4 {
	return u.get(loc).mat
}
