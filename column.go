/*
Copyright © 2026 the RCM authors.
This file is part of RCM.

RCM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RCM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RCM.  If not, see <http://www.gnu.org/licenses/>.
*/

package rcm

import (
	"fmt"
	"math"

	"github.com/spatialmodel/rcm/thermo"
	"gonum.org/v1/gonum/floats"
)

// Column holds the state of a single atmospheric column.
// All vertical arrays are ordered from the top of the atmosphere
// (index 0) to the layer nearest the surface.
type Column struct {
	Lev          []float64 `desc:"Pressure at layer centers" units:"hPa"`
	LevBounds    []float64 `desc:"Pressure at layer interfaces" units:"hPa"`
	Tatm         []float64 `desc:"Atmospheric temperature" units:"K"`
	HeatCapacity []float64 `desc:"Layer heat capacity" units:"J/m²/K"`

	// HasSurface specifies whether the column includes a surface
	// pseudo-layer below the lowest atmospheric layer.
	HasSurface      bool
	Ts              float64 `desc:"Surface temperature" units:"K"`
	SfcHeatCapacity float64 `desc:"Surface heat capacity" units:"J/m²/K"`
}

// ColumnOption allows options of different ways to initialize
// a column.
type ColumnOption func(*columnConfig) error

type columnConfig struct {
	nlev       int
	ps         float64
	waterDepth float64
	surface    bool
	ts         float64
	tatm       []float64
}

// NumLevels sets the number of atmospheric layers (default 30).
func NumLevels(n int) ColumnOption {
	return func(c *columnConfig) error {
		if n < 1 {
			return fmt.Errorf("rcm: number of levels must be at least 1 but is %d", n)
		}
		c.nlev = n
		return nil
	}
}

// SurfacePressure sets the pressure at the bottom of the
// atmosphere [hPa] (default 1000).
func SurfacePressure(ps float64) ColumnOption {
	return func(c *columnConfig) error {
		if !(ps > 0) {
			return fmt.Errorf("rcm: surface pressure must be positive but is %g", ps)
		}
		c.ps = ps
		return nil
	}
}

// WaterDepth sets the depth [m] of the slab ocean that sets the surface
// heat capacity (default 1).
func WaterDepth(d float64) ColumnOption {
	return func(c *columnConfig) error {
		if !(d > 0) {
			return fmt.Errorf("rcm: water depth must be positive but is %g", d)
		}
		c.waterDepth = d
		return nil
	}
}

// NoSurface creates a column with no surface pseudo-layer.
func NoSurface() ColumnOption {
	return func(c *columnConfig) error {
		c.surface = false
		return nil
	}
}

// SurfaceTemperature sets the initial surface temperature [K] (default 288).
func SurfaceTemperature(ts float64) ColumnOption {
	return func(c *columnConfig) error {
		c.ts = ts
		return nil
	}
}

// Temperatures sets the initial atmospheric temperature profile [K],
// ordered from the top of the atmosphere downward. The number of values
// must match the number of levels.
func Temperatures(tatm []float64) ColumnOption {
	return func(c *columnConfig) error {
		c.tatm = append([]float64(nil), tatm...)
		return nil
	}
}

// NewColumn creates a column with evenly spaced pressure levels between
// the top of the atmosphere and the surface pressure. Unless overridden,
// the surface is 288 K and the atmospheric temperature decreases linearly
// from 10 K below the surface temperature at the lowest layer to 200 K
// at the top.
func NewColumn(options ...ColumnOption) (*Column, error) {
	cfg := &columnConfig{
		nlev:       30,
		ps:         thermo.Ps,
		waterDepth: 1,
		surface:    true,
		ts:         288,
	}
	for _, o := range options {
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	n := cfg.nlev
	c := &Column{
		Lev:          make([]float64, n),
		LevBounds:    make([]float64, n+1),
		HeatCapacity: make([]float64, n),
		HasSurface:   cfg.surface,
	}
	floats.Span(c.LevBounds, 0, cfg.ps)
	c.LevBounds[n] = cfg.ps
	for k := 0; k < n; k++ {
		c.Lev[k] = (c.LevBounds[k] + c.LevBounds[k+1]) / 2
		dp := (c.LevBounds[k+1] - c.LevBounds[k]) * 100. // Pa
		c.HeatCapacity[k] = thermo.Cp * dp / thermo.G
	}
	if cfg.tatm != nil {
		if len(cfg.tatm) != n {
			return nil, fmt.Errorf("rcm: %d initial temperatures given for %d levels", len(cfg.tatm), n)
		}
		c.Tatm = cfg.tatm
	} else {
		c.Tatm = make([]float64, n)
		if n == 1 {
			c.Tatm[0] = cfg.ts - 10
		} else {
			floats.Span(c.Tatm, 200, cfg.ts-10)
			c.Tatm[n-1] = cfg.ts - 10
		}
	}
	if c.HasSurface {
		c.Ts = cfg.ts
		c.SfcHeatCapacity = thermo.Cw * thermo.RhoW * cfg.waterDepth
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NumLevels returns the number of atmospheric layers.
func (c *Column) NumLevels() int { return len(c.Tatm) }

// Validate checks that the column arrays are consistent with
// each other and physically meaningful.
func (c *Column) Validate() error {
	n := len(c.Tatm)
	if n == 0 {
		return fmt.Errorf("rcm: column has no levels")
	}
	if len(c.Lev) != n || len(c.HeatCapacity) != n {
		return fmt.Errorf("rcm: column arrays have inconsistent lengths: "+
			"Lev=%d, Tatm=%d, HeatCapacity=%d", len(c.Lev), n, len(c.HeatCapacity))
	}
	if len(c.LevBounds) != n+1 {
		return fmt.Errorf("rcm: column has %d levels but %d level bounds", n, len(c.LevBounds))
	}
	for k := 0; k < n; k++ {
		if !(c.Lev[k] > 0) {
			return fmt.Errorf("rcm: pressure at level %d must be positive but is %g", k, c.Lev[k])
		}
		if k > 0 && c.Lev[k] <= c.Lev[k-1] {
			return fmt.Errorf("rcm: pressure must increase downward but level %d (%g hPa) "+
				"is not below level %d (%g hPa)", k, c.Lev[k], k-1, c.Lev[k-1])
		}
		if !(c.Tatm[k] > 0) || math.IsInf(c.Tatm[k], 0) {
			return fmt.Errorf("rcm: temperature at level %d must be positive but is %g", k, c.Tatm[k])
		}
		if !(c.HeatCapacity[k] > 0) {
			return fmt.Errorf("rcm: heat capacity at level %d must be positive but is %g", k, c.HeatCapacity[k])
		}
	}
	if c.HasSurface {
		if !(c.Ts > 0) || math.IsInf(c.Ts, 0) {
			return fmt.Errorf("rcm: surface temperature must be positive but is %g", c.Ts)
		}
		if !(c.SfcHeatCapacity > 0) {
			return fmt.Errorf("rcm: surface heat capacity must be positive but is %g", c.SfcHeatCapacity)
		}
		if !(c.LevBounds[n] >= c.Lev[n-1]) {
			return fmt.Errorf("rcm: surface pressure %g hPa is above the lowest level (%g hPa)",
				c.LevBounds[n], c.Lev[n-1])
		}
	}
	return nil
}

// Profile returns the pressure [hPa], temperature [K] and heat capacity
// [J/m²/K] of the column. If the column has a surface, it is appended as
// a final pseudo-layer at the surface pressure. The returned slices are
// copies.
func (c *Column) Profile() (p, T, heatCap []float64) {
	p = append([]float64(nil), c.Lev...)
	T = append([]float64(nil), c.Tatm...)
	heatCap = append([]float64(nil), c.HeatCapacity...)
	if c.HasSurface {
		p = append(p, c.LevBounds[len(c.LevBounds)-1])
		T = append(T, c.Ts)
		heatCap = append(heatCap, c.SfcHeatCapacity)
	}
	return
}

// Enthalpy returns the total column heat content Σ c·T [J/m²],
// including the surface if there is one.
func (c *Column) Enthalpy() float64 {
	e := floats.Dot(c.HeatCapacity, c.Tatm)
	if c.HasSurface {
		e += c.SfcHeatCapacity * c.Ts
	}
	return e
}

// Adjusted returns a copy of c with the temperature increments in t
// added to it. Variables missing from t are left unchanged.
func (c *Column) Adjusted(t Tendencies) (*Column, error) {
	o := &Column{
		Lev:             append([]float64(nil), c.Lev...),
		LevBounds:       append([]float64(nil), c.LevBounds...),
		Tatm:            append([]float64(nil), c.Tatm...),
		HeatCapacity:    append([]float64(nil), c.HeatCapacity...),
		HasSurface:      c.HasSurface,
		Ts:              c.Ts,
		SfcHeatCapacity: c.SfcHeatCapacity,
	}
	if dT, ok := t[Tatm]; ok {
		if len(dT) != len(o.Tatm) {
			return nil, fmt.Errorf("rcm: %s increment has length %d but column has %d levels",
				Tatm, len(dT), len(o.Tatm))
		}
		floats.Add(o.Tatm, dT)
	}
	if dTs, ok := t[Ts]; ok && o.HasSurface {
		if len(dTs) != 1 {
			return nil, fmt.Errorf("rcm: %s increment has length %d; it should be 1", Ts, len(dTs))
		}
		o.Ts += dTs[0]
	}
	return o, nil
}
