// Package geometry holds the planar vector math used by the steering controller.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrZeroVector is returned when a zero-length vector is normalized.
var ErrZeroVector = errors.New("cannot normalize zero-length vector")

// Vec3 is a world-space vector. Y is the vertical axis.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// FromArray builds a Vec3 from an [x, y, z] triple.
func FromArray(a [3]float64) Vec3 {
	return Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(c float64) Vec3 {
	return Vec3{X: v.X * c, Y: v.Y * c, Z: v.Z * c}
}

// Planar projects v onto the x/z plane.
func (v Vec3) Planar() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// Magnitude returns the Euclidean norm.
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector in the direction of v.
func (v Vec3) Normalize() (Vec3, error) {
	m := v.Magnitude()
	if m == 0 {
		return Vec3{}, ErrZeroVector
	}
	return v.Scale(1 / m), nil
}

func (v Vec3) String() string {
	return fmt.Sprintf("X: %g, Y: %g, Z: %g", v.X, v.Y, v.Z)
}

// Bearing returns the heading-convention angle of v in degrees:
// the negated atan2(x, z), folded into (-180, 180] before negation.
// Only the ratio of x and z matters, so any positive scaling of v gives the
// same bearing. A zero vector yields 0.
func Bearing(v Vec3) float64 {
	deg := math.Atan2(v.X, v.Z) * 180 / math.Pi
	return -FoldDegrees(deg)
}

// FoldDegrees maps any angle in degrees into (-180, 180].
func FoldDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// AngleDiff returns a - b folded into (-180, 180]. A difference of exactly
// -180 is reported as 180.
func AngleDiff(a, b float64) float64 {
	return FoldDegrees(a - b)
}
