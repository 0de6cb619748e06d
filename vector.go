package main

import "math"

// Vector2 is a 2D vector in world space
type Vector2 struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// UnitVector returns the unit vector at the given angle in radians
func UnitVector(rad float64) Vector2 {
	return Vector2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// AngleVector returns a vector of the given magnitude at the given angle in radians
func AngleVector(rad, magnitude float64) Vector2 {
	return UnitVector(rad).Scale(magnitude)
}

func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }

func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }

func (v Vector2) Scale(s float64) Vector2 { return Vector2{v.X * s, v.Y * s} }

func (v Vector2) Neg() Vector2 { return Vector2{-v.X, -v.Y} }

func (v Vector2) Dot(o Vector2) float64 { return v.X*o.X + v.Y*o.Y }

// Len returns the magnitude |v|
func (v Vector2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Unit returns v scaled to length 1. The zero vector stays zero.
func (v Vector2) Unit() Vector2 {
	l := v.Len()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{v.X / l, v.Y / l}
}

// Rotate rotates v counter-clockwise by rad radians
func (v Vector2) Rotate(rad float64) Vector2 {
	c, s := math.Cos(rad), math.Sin(rad)
	return Vector2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Angle returns the direction of v in radians
func (v Vector2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Distance returns |v - o|
func (v Vector2) Distance(o Vector2) float64 { return v.Sub(o).Len() }
