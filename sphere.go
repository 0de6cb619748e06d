package main

import "math"

// verticalSlope is the |dy/dx| beyond which a line is solved as vertical.
// Past this the slope-intercept form loses precision for off-origin lines.
const verticalSlope = 1e9

// Sphere is a bounding circle used for every collision query
type Sphere struct {
	Center Vector2
	Radius float64
}

// IntersectsLine intersects the infinite line through origin along direction.
// The two points come back nearest-to-origin first; a tangent line returns
// the same point twice.
func (s Sphere) IntersectsLine(origin, direction Vector2) (bool, Vector2, Vector2) {
	if direction.X == 0 || math.Abs(direction.Y) > verticalSlope*math.Abs(direction.X) {
		return s.intersectsVerticalLine(origin)
	}

	m := direction.Y / direction.X
	b := origin.Y - m*origin.X
	x0, y0, r := s.Center.X, s.Center.Y, s.Radius
	diff := b - y0

	// Quadratic in x with the common factor of 2 taken out of B and C.
	qa := 1 + m*m
	qb := -x0 + m*diff
	qc := x0*x0 + diff*diff - r*r

	disc := qb*qb - qa*qc
	switch {
	case disc < 0:
		return false, Vector2{}, Vector2{}
	case disc == 0:
		x := -qb / qa
		p := Vector2{x, m*x + b}
		return true, p, p
	}

	sq := math.Sqrt(disc)
	x1 := (-qb + sq) / qa
	x2 := (-qb - sq) / qa
	p1 := Vector2{x1, m*x1 + b}
	p2 := Vector2{x2, m*x2 + b}
	if p2.Distance(origin) < p1.Distance(origin) {
		p1, p2 = p2, p1
	}
	return true, p1, p2
}

func (s Sphere) intersectsVerticalLine(origin Vector2) (bool, Vector2, Vector2) {
	x0, y0, r := s.Center.X, s.Center.Y, s.Radius
	x := origin.X
	if math.Abs(x-x0) > r {
		return false, Vector2{}, Vector2{}
	}
	h := math.Sqrt(r*r - (x-x0)*(x-x0))
	p1 := Vector2{x, y0 + h}
	p2 := Vector2{x, y0 - h}
	if p2.Distance(origin) < p1.Distance(origin) {
		p1, p2 = p2, p1
	}
	return true, p1, p2
}

// IntersectsCircleFast reports whether the two circle outlines cross or touch.
// Concentric circles never do.
func (s Sphere) IntersectsCircleFast(o Sphere) bool {
	d := s.Center.Distance(o.Center)
	return d != 0 && math.Abs(s.Radius-o.Radius) <= d && d <= s.Radius+o.Radius
}

// IntersectsCircleSolidFast reports whether either centre lies inside the
// larger of the two circles.
func (s Sphere) IntersectsCircleSolidFast(o Sphere) bool {
	return s.Center.Distance(o.Center) < math.Max(s.Radius, o.Radius)
}

// IntersectsCircle returns the crossing points of the two outlines
func (s Sphere) IntersectsCircle(o Sphere) (bool, Vector2, Vector2) {
	if !s.IntersectsCircleFast(o) {
		return false, Vector2{}, Vector2{}
	}
	delta := o.Center.Sub(s.Center)
	d := delta.Len()
	a := (s.Radius*s.Radius - o.Radius*o.Radius + d*d) / (2 * d)
	h := math.Sqrt(math.Max(0, s.Radius*s.Radius-a*a))
	u := delta.Scale(1 / d)
	mid := s.Center.Add(u.Scale(a))
	perp := Vector2{-u.Y, u.X}.Scale(h)
	return true, mid.Add(perp), mid.Sub(perp)
}

// IntersectsLineSegment requires the centre to project inside [v0, v1]
func (s Sphere) IntersectsLineSegment(v0, v1 Vector2) bool {
	seg := v1.Sub(v0)
	l2 := seg.Dot(seg)
	if l2 == 0 {
		return s.Center.Distance(v0) <= s.Radius
	}
	t := s.Center.Sub(v0).Dot(seg) / l2
	if t < 0 || t > 1 {
		return false
	}
	closest := v0.Add(seg.Scale(t))
	return s.Center.Distance(closest) <= s.Radius
}

// IntersectsTriangle tests the three edges
func (s Sphere) IntersectsTriangle(v0, v1, v2 Vector2) bool {
	return s.IntersectsLineSegment(v0, v1) ||
		s.IntersectsLineSegment(v1, v2) ||
		s.IntersectsLineSegment(v2, v0)
}
