// Package core provides fundamental types and utilities shared by the
// simulation, the renderer and the terminal platform. It has no external
// dependencies so match logic stays pure and testable.
package core

import "math"

// Vec2 is a 2D vector in world units (y grows upward).
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Reflect mirrors v about the surface with unit normal n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// FromAngle returns a vector of the given length pointing at angle radians.
func FromAngle(angle, length float64) Vec2 {
	return Vec2{math.Cos(angle) * length, math.Sin(angle) * length}
}

// Box is an axis-aligned box in world units described by its center and
// half extents.
type Box struct {
	Center Vec2
	HalfW  float64
	HalfH  float64
}

// NewBox creates a box centered at c with the given full width and height.
func NewBox(c Vec2, w, h float64) Box {
	return Box{Center: c, HalfW: w / 2, HalfH: h / 2}
}

// Min returns the bottom-left corner.
func (b Box) Min() Vec2 {
	return Vec2{b.Center.X - b.HalfW, b.Center.Y - b.HalfH}
}

// Max returns the top-right corner.
func (b Box) Max() Vec2 {
	return Vec2{b.Center.X + b.HalfW, b.Center.Y + b.HalfH}
}

// Overlaps returns true if the two boxes intersect. Touching edges do not count.
func (b Box) Overlaps(o Box) bool {
	if math.Abs(b.Center.X-o.Center.X) >= b.HalfW+o.HalfW {
		return false
	}
	return math.Abs(b.Center.Y-o.Center.Y) < b.HalfH+o.HalfH
}

// ClosestPoint returns the point of the box nearest to p.
// Points inside the box are returned unchanged.
func (b Box) ClosestPoint(p Vec2) Vec2 {
	lo, hi := b.Min(), b.Max()
	return Vec2{ClampF(p.X, lo.X, hi.X), ClampF(p.Y, lo.Y, hi.Y)}
}

// Contains returns true if p lies inside or on the box.
func (b Box) Contains(p Vec2) bool {
	lo, hi := b.Min(), b.Max()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// Grow returns the box enlarged by d on every side.
func (b Box) Grow(d float64) Box {
	return Box{Center: b.Center, HalfW: b.HalfW + d, HalfH: b.HalfH + d}
}

// SweepBox intersects the segment from a to b with the box. It returns the
// fraction of the segment where it enters the box and the normal of the face
// it enters through. ok is false when the segment misses the box, ends
// before reaching it, or starts inside it.
//
// A circle of radius r moving from a to b touches box when the segment
// enters box.Grow(r); the corners are treated as square.
func SweepBox(a, b Vec2, box Box) (t float64, n Vec2, ok bool) {
	d := b.Sub(a)
	lo, hi := box.Min(), box.Max()
	enter, exit := math.Inf(-1), math.Inf(1)

	axes := [2]struct {
		from, delta, lo, hi float64
		normal              Vec2
	}{
		{a.X, d.X, lo.X, hi.X, Vec2{1, 0}},
		{a.Y, d.Y, lo.Y, hi.Y, Vec2{0, 1}},
	}
	for _, ax := range axes {
		if ax.delta == 0 {
			if ax.from < ax.lo || ax.from > ax.hi {
				return 0, Vec2{}, false
			}
			continue
		}
		near := (ax.lo - ax.from) / ax.delta
		far := (ax.hi - ax.from) / ax.delta
		face := ax.normal.Scale(-1)
		if near > far {
			near, far = far, near
			face = ax.normal
		}
		if near > enter {
			enter, n = near, face
		}
		exit = math.Min(exit, far)
	}

	if enter > exit || enter < 0 || enter > 1 {
		return 0, Vec2{}, false
	}
	return enter, n, true
}

// CircleOverlapsBox returns true if a circle intersects the box.
func CircleOverlapsBox(c Vec2, r float64, b Box) bool {
	d := c.Sub(b.ClosestPoint(c))
	return d.Dot(d) < r*r
}

// CirclesOverlap returns true if two circles intersect.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	d := a.Sub(b)
	rs := ra + rb
	return d.Dot(d) < rs*rs
}

// CircleBoxNormal returns the unit normal pointing from the box toward the
// circle center, and the penetration depth. When the center is inside the box
// the normal points out through the nearest face.
func CircleBoxNormal(c Vec2, r float64, b Box) (Vec2, float64) {
	closest := b.ClosestPoint(c)
	d := c.Sub(closest)
	if dist := d.Len(); dist > 0 {
		return d.Scale(1 / dist), r - dist
	}

	// Center inside: push out along the axis of least penetration.
	local := c.Sub(b.Center)
	px := b.HalfW - math.Abs(local.X)
	py := b.HalfH - math.Abs(local.Y)
	if px < py {
		return Vec2{math.Copysign(1, local.X), 0}, px + r
	}
	return Vec2{0, math.Copysign(1, local.Y)}, py + r
}

// Rect represents an axis-aligned rectangle in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
