package boundary

import "github.com/paulmach/orb"

// Checker is an Oracle over a fixed set of boundaries.
type Checker struct {
	boundaries []Boundary
	bound      orb.Bound
}

// NewChecker copies bs into a new Checker.
func NewChecker(bs []Boundary) *Checker {
	c := &Checker{boundaries: make([]Boundary, len(bs))}
	copy(c.boundaries, bs)
	for i, b := range c.boundaries {
		if i == 0 {
			c.bound = b.Bound
			continue
		}
		c.bound = c.bound.Union(b.Bound)
	}
	return c
}

// InCity reports whether p lies inside any boundary.
func (c *Checker) InCity(p orb.Point) bool {
	if len(c.boundaries) == 0 || !c.bound.Contains(p) {
		return false
	}
	for i := range c.boundaries {
		if c.boundaries[i].HasPoint(p) {
			return true
		}
	}
	return false
}

// Len returns the number of boundaries.
func (c *Checker) Len() int {
	return len(c.boundaries)
}

// Bound returns the union of all boundary boxes.
func (c *Checker) Bound() orb.Bound {
	return c.bound
}
