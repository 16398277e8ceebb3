// Package earth holds the layered density model of the sphere a neutrino
// traverses: shell boundary radii with either constant densities or quadratic
// density profiles, plus per-shell electron fractions.
package earth

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyModel indicates a density model with no shells.
	ErrEmptyModel = errors.New("earth: density model must have at least one shell")
	// ErrSizeMismatch indicates per-shell arrays of differing lengths.
	ErrSizeMismatch = errors.New("earth: per-shell arrays must all have the same length")
	// ErrRadiiOrder indicates boundary radii that are not strictly monotonic.
	ErrRadiiOrder = errors.New("earth: boundary radii must be strictly monotonic")
	// ErrTooManyLayers indicates a ray crossing more shells than the engine capacity.
	ErrTooManyLayers = errors.New("earth: ray crosses more layers than the configured capacity")
)

// Model is a layered density model, canonicalised to outer->inner boundary
// order. With Poly set, the density of shell i is A[i] + B[i]*r + C[i]*r^2
// as a function of the radius in km; otherwise it is the constant Rho[i].
type Model struct {
	Radii []float64
	Rho   []float64
	A     []float64
	B     []float64
	C     []float64
	Ye    []float64
	Poly  bool
}

// New builds a constant-density model. Radii must be strictly monotonic in
// either direction; the result is stored outer->inner.
func New(radii, rhos, yps []float64) (*Model, error) {
	if len(radii) == 0 {
		return nil, ErrEmptyModel
	}
	if len(rhos) != len(radii) || len(yps) != len(radii) {
		return nil, fmt.Errorf("%w: %d radii, %d densities, %d electron fractions",
			ErrSizeMismatch, len(radii), len(rhos), len(yps))
	}
	m := &Model{
		Radii: append([]float64(nil), radii...),
		Rho:   append([]float64(nil), rhos...),
		Ye:    append([]float64(nil), yps...),
	}
	if err := m.canonicalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewPoly builds a model with quadratic density profiles per shell.
func NewPoly(radii, a, b, c, yps []float64) (*Model, error) {
	if len(radii) == 0 {
		return nil, ErrEmptyModel
	}
	if len(a) != len(radii) || len(b) != len(radii) || len(c) != len(radii) || len(yps) != len(radii) {
		return nil, fmt.Errorf("%w: %d radii, coefficient lengths %d/%d/%d, %d electron fractions",
			ErrSizeMismatch, len(radii), len(a), len(b), len(c), len(yps))
	}
	m := &Model{
		Radii: append([]float64(nil), radii...),
		A:     append([]float64(nil), a...),
		B:     append([]float64(nil), b...),
		C:     append([]float64(nil), c...),
		Ye:    append([]float64(nil), yps...),
		Poly:  true,
	}
	if err := m.canonicalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// Shells returns the number of boundary radii in the model.
func (m *Model) Shells() int { return len(m.Radii) }

// canonicalize validates monotonic radii and flips ascending input so the
// first boundary is always the outermost.
func (m *Model) canonicalize() error {
	if len(m.Radii) >= 2 {
		sign := 1.0
		if m.Radii[1] < m.Radii[0] {
			sign = -1.0
		}
		for i := 1; i < len(m.Radii); i++ {
			if (m.Radii[i]-m.Radii[i-1])*sign <= 0 {
				return fmt.Errorf("%w: radii[%d]=%g, radii[%d]=%g",
					ErrRadiiOrder, i-1, m.Radii[i-1], i, m.Radii[i])
			}
		}
		if sign > 0 {
			reverse(m.Radii)
			reverse(m.Rho)
			reverse(m.A)
			reverse(m.B)
			reverse(m.C)
			reverse(m.Ye)
		}
	}
	return nil
}

// CosineLimits returns, per shell boundary, the signed zenith cosine below
// which a ray from the detector radius intersects that boundary. The
// outermost boundary is assigned zero: any downward ray enters it.
func (m *Model) CosineLimits(detectorRadius float64) []float64 {
	limits := make([]float64, len(m.Radii))
	for i, r := range m.Radii {
		if i == 0 {
			limits[i] = 0
			continue
		}
		ratio := r * r / (detectorRadius * detectorRadius)
		if ratio >= 1 {
			limits[i] = 0
			continue
		}
		limits[i] = -math.Sqrt(1 - ratio)
	}
	return limits
}

// MaxLayers computes, per cosine bin, the number of shell boundaries crossed
// by a ray at that zenith cosine, excluding the production layer. It fails if
// any bin exceeds capacity: truncating the path would silently corrupt the
// probabilities downstream.
func (m *Model) MaxLayers(cosines []float64, detectorRadius float64, capacity int) ([]int, error) {
	limits := m.CosineLimits(detectorRadius)
	out := make([]int, len(cosines))
	for ci, c := range cosines {
		n := 0
		for _, limit := range limits {
			if c < limit {
				n++
			}
		}
		if n > capacity {
			return nil, fmt.Errorf("%w: cosine %g crosses %d, capacity %d", ErrTooManyLayers, c, n, capacity)
		}
		out[ci] = n
	}
	return out, nil
}

// Scale replaces the boundary radii below the outer boundary and scales each
// layer's density (or profile coefficients) by the matching weight. Both
// lists are given innermost-first, as in the historical earth-model tools.
func (m *Model) Scale(radii, weights []float64) error {
	n := len(m.Radii) - 1
	if len(radii) != n || len(weights) != n {
		return fmt.Errorf("%w: expected %d radii and weights, got %d and %d",
			ErrSizeMismatch, n, len(radii), len(weights))
	}
	for i := 0; i < n; i++ {
		m.Radii[i] = radii[n-i-1]
	}
	if m.Poly {
		for i := 0; i < n; i++ {
			w := weights[n-i-1]
			m.A[i] *= w
			m.B[i] *= w
			m.C[i] *= w
		}
		m.A[n] *= weights[0]
		m.B[n] *= weights[0]
		m.C[n] *= weights[0]
	} else {
		for i := 0; i < n; i++ {
			m.Rho[i] *= weights[n-i-1]
		}
		m.Rho[n] *= weights[0]
	}
	return m.canonicalize()
}

// SetElectronFractions replaces the per-shell electron fractions.
func (m *Model) SetElectronFractions(yps []float64) error {
	if len(yps) != len(m.Ye) {
		return fmt.Errorf("%w: %d electron fractions for %d shells", ErrSizeMismatch, len(yps), len(m.Ye))
	}
	copy(m.Ye, yps)
	return nil
}

// Default returns a coarse four-shell PREM model (inner core, outer core,
// mantle, crust) suitable when no density table is supplied.
func Default() *Model {
	m, err := New(
		[]float64{1220, 3480, 5701, 6371},
		[]float64{13.0, 11.3, 5.0, 3.3},
		[]float64{0.4661, 0.4661, 0.4957, 0.4957},
	)
	if err != nil {
		panic(err)
	}
	return m
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
