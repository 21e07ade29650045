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

package nband

import (
	"runtime"
	"sync"

	"github.com/spatialmodel/rcm"
)

// FluxComponentsTop calculates the contributions to the flux escaping
// to space from the surface and from the emission of each layer of c.
// The surface contribution is the total upward flux leaving the surface,
// including reflection, attenuated by the whole atmosphere. The
// contributions are the terms of the top row of the upward flux
// operator and sum to the flux to space calculated by RadiativeHeating.
func (r *Radiation) FluxComponentsTop(c *rcm.Column) (sfc float64, levels []float64, err error) {
	f, err := r.RadiativeHeating(c)
	if err != nil {
		return 0, nil, err
	}
	n := r.nlev
	up := r.tr.UpOperator()
	sfc = up.At(0, n) * f.FluxUp[n]
	levels = perLevel(n, func(k int) float64 {
		return up.At(0, k) * f.Emission[k]
	})
	return sfc, levels, nil
}

// FluxComponentsBottom calculates the contributions to the downward
// flux reaching the surface from the emission of each layer of c, as
// the terms of the bottom row of the downward flux operator. When
// there is no flux from space, the contributions sum to the flux to the
// surface calculated by RadiativeHeating.
func (r *Radiation) FluxComponentsBottom(c *rcm.Column) ([]float64, error) {
	f, err := r.RadiativeHeating(c)
	if err != nil {
		return nil, err
	}
	n := r.nlev
	down := r.tr.DownOperator()
	return perLevel(n, func(k int) float64 {
		return down.At(n, k+1) * f.Emission[k]
	}), nil
}

// perLevel concurrently calculates f for each of n levels and
// returns the results in level order.
func perLevel(n int, f func(k int) float64) []float64 {
	o := make([]float64, n)
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < n; ii += nprocs {
				o[ii] = f(ii)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return o
}
