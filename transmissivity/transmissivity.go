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

// Package transmissivity converts layer absorptivities into
// transmissivities and propagates two-stream radiative fluxes
// through a column of layers.
//
// Layers are indexed from the top of the atmosphere (0) downward.
// Fluxes are defined at the N+1 layer interfaces, where interface 0 is
// the top of the atmosphere and interface N is the surface.
package transmissivity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transmissivity holds the absorptivity and transmissivity of each layer.
type Transmissivity struct {
	absorptivity   []float64
	transmissivity []float64
}

// New returns a Transmissivity for the given layer absorptivities,
// which must be between zero and one.
func New(absorptivity []float64) (*Transmissivity, error) {
	if len(absorptivity) == 0 {
		return nil, fmt.Errorf("transmissivity: no layers given")
	}
	t := &Transmissivity{
		absorptivity:   make([]float64, len(absorptivity)),
		transmissivity: make([]float64, len(absorptivity)),
	}
	for i, a := range absorptivity {
		if math.IsNaN(a) || a < 0 || a > 1 {
			return nil, fmt.Errorf("transmissivity: absorptivity of layer %d is %g; it must be between 0 and 1", i, a)
		}
		t.absorptivity[i] = a
		t.transmissivity[i] = 1 - a
	}
	return t, nil
}

// Len returns the number of layers.
func (t *Transmissivity) Len() int { return len(t.absorptivity) }

// Absorptivity returns a copy of the layer absorptivities.
func (t *Transmissivity) Absorptivity() []float64 {
	return append([]float64(nil), t.absorptivity...)
}

// Transmissivity returns a copy of the layer transmissivities.
func (t *Transmissivity) Transmissivity() []float64 {
	return append([]float64(nil), t.transmissivity...)
}

// FluxDown returns the downward flux at each interface given the flux
// entering the top of the column and the emission from each layer.
// Each layer transmits part of the beam from above and adds its own
// emission.
func (t *Transmissivity) FluxDown(fluxDownTop float64, emission []float64) []float64 {
	n := len(t.transmissivity)
	flux := make([]float64, n+1)
	flux[0] = fluxDownTop
	for k := 0; k < n; k++ {
		flux[k+1] = flux[k]*t.transmissivity[k] + emission[k]
	}
	return flux
}

// FluxUp returns the upward flux at each interface given the flux
// leaving the surface and the emission from each layer.
func (t *Transmissivity) FluxUp(fluxUpBottom float64, emission []float64) []float64 {
	n := len(t.transmissivity)
	flux := make([]float64, n+1)
	flux[n] = fluxUpBottom
	for k := n - 1; k >= 0; k-- {
		flux[k] = flux[k+1]*t.transmissivity[k] + emission[k]
	}
	return flux
}

// UpOperator returns the (N+1)×(N+1) matrix that maps sources to upward
// fluxes at every interface. Source j < N is the emission of layer j and
// source N is the flux leaving the surface, so that
// FluxUp(b, e) = UpOperator() · [e_0 … e_{N-1}, b].
func (t *Transmissivity) UpOperator() *mat.Dense {
	n := len(t.transmissivity)
	op := mat.NewDense(n+1, n+1, nil)
	for i := 0; i <= n; i++ {
		v := 1.
		for j := i; j <= n; j++ {
			op.Set(i, j, v)
			if j < n {
				v *= t.transmissivity[j]
			}
		}
	}
	return op
}

// DownOperator returns the (N+1)×(N+1) matrix that maps sources to
// downward fluxes at every interface. Source 0 is the flux entering the
// top of the column and source j+1 is the emission of layer j, so that
// FluxDown(b, e) = DownOperator() · [b, e_0 … e_{N-1}].
func (t *Transmissivity) DownOperator() *mat.Dense {
	n := len(t.transmissivity)
	op := mat.NewDense(n+1, n+1, nil)
	for s := 0; s <= n; s++ {
		v := 1.
		for i := s; i <= n; i++ {
			op.Set(i, s, v)
			if i < n {
				v *= t.transmissivity[i]
			}
		}
	}
	return op
}
