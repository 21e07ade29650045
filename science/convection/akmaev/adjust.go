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

// Package akmaev provides an energy-conserving convective adjustment
// scheme that relaxes a temperature profile to a critical lapse rate,
// following Akmaev (1991), Monthly Weather Review 119, 2436-2449.
package akmaev

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/spatialmodel/rcm/thermo"
)

// ErrShape is returned when input arrays do not have matching lengths.
var ErrShape = errors.New("akmaev: array shape mismatch")

// Orientation specifies the ordering of a vertical axis.
type Orientation int

const (
	// TopDown arrays start at the top of the atmosphere (lowest pressure).
	TopDown Orientation = iota
	// BottomUp arrays start at the surface (highest pressure).
	BottomUp
)

func (o Orientation) String() string {
	switch o {
	case TopDown:
		return "top-down"
	case BottomUp:
		return "bottom-up"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Adjust returns the temperature profile that results from adjusting T
// to the critical lapse rate, where p is pressure [hPa], T is temperature
// [K], heatCap is the heat capacity of each layer [J/m²/K], and lapseRate
// is the critical lapse rate at each layer [K/km]. lapseRate may also
// hold a single value that applies to every layer. All arrays are
// ordered according to o and the result is ordered the same way.
//
// Layers where the temperature falls off with height faster than the
// critical lapse rate are merged into neutral groups whose lapse rate
// equals the critical rate, conserving the total heat content Σ c·T of
// each group. The lapse rate between two adjacent layers is compared
// with the critical rate of the upper one. Groups grow downward and
// upward until the whole column is stable, so a merge may absorb groups
// formed earlier.
func Adjust(p, T, heatCap, lapseRate []float64, o Orientation) ([]float64, error) {
	n := len(T)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty column", ErrShape)
	}
	if len(p) != n || len(heatCap) != n {
		return nil, fmt.Errorf("%w: pressure=%d, temperature=%d, heat capacity=%d",
			ErrShape, len(p), n, len(heatCap))
	}
	lapse, err := broadcast(lapseRate, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if !(p[i] > 0) || !(T[i] > 0) || !(heatCap[i] > 0) ||
			math.IsInf(T[i], 0) || math.IsNaN(lapse[i]) {
			return nil, fmt.Errorf("akmaev: invalid input at level %d: p=%g, T=%g, c=%g, lapse rate=%g",
				i, p[i], T[i], heatCap[i], lapse[i])
		}
	}
	if o != TopDown && o != BottomUp {
		return nil, fmt.Errorf("akmaev: invalid orientation %v", o)
	}

	p, T, heatCap = slices.Clone(p), slices.Clone(T), slices.Clone(heatCap)
	if o == TopDown {
		for _, s := range [][]float64{p, T, heatCap, lapse} {
			slices.Reverse(s)
		}
	}

	out := adjustBottomUp(p, T, heatCap, lapse)

	if o == TopDown {
		slices.Reverse(out)
	}
	return out, nil
}

// broadcast returns a copy of v with length n, repeating v if it
// holds a single value.
func broadcast(v []float64, n int) ([]float64, error) {
	switch len(v) {
	case 1:
		return fill(n, v[0]), nil
	case n:
		return slices.Clone(v), nil
	default:
		return nil, fmt.Errorf("%w: lapse rate has %d values for %d levels", ErrShape, len(v), n)
	}
}

// adjustBottomUp performs the adjustment on arrays ordered from the
// surface upward. The arrays are not modified.
//
// Temperatures are transformed to θ = T/Π and Σ c·T = Σ q·θ with
// q = c·Π. Π is built upward from the surface pressure ps as
// Π_i = Π_{i-1}·(p_i/p_{i-1})^α_i with α_i = Rd·Γ_i/g, so uniform θ
// between levels i-1 and i means the lapse rate between them is Γ_i
// (Akmaev 1991, eq. 14).
func adjustBottomUp(p, T, heatCap, lapse []float64) []float64 {
	L := len(T)
	pi := make([]float64, L)
	theta := make([]float64, L)
	q := make([]float64, L)
	pBelow, piBelow := thermo.Ps, 1.
	for i := 0; i < L; i++ {
		alpha := thermo.Rd / thermo.G * lapse[i] / 1.e3
		pi[i] = piBelow * math.Pow(p[i]/pBelow, alpha)
		pBelow, piBelow = p[i], pi[i]
		theta[i] = T[i] / pi[i]
		q[i] = heatCap[i] * pi[i]
	}
	adjusted := make([]bool, L)
	if L > 1 {
		mergeNeutral(theta, q, adjusted)
	}
	out := make([]float64, L)
	for i := 0; i < L; i++ {
		if adjusted[i] {
			out[i] = theta[i] * pi[i]
		} else {
			out[i] = T[i]
		}
	}
	return out
}

// mergeNeutral carries out the Akmaev (1991) algorithm on the
// transformed temperatures theta with weights q, ordered from the
// bottom up. theta is replaced with the adjusted values, and the levels
// that were part of a merged group are marked in adjusted.
//
// Counters follow the paper: l is the current model level and k is the
// current neutral group, both counted from one. Group k holds nk[k-1]
// levels with mean thetak[k-1], weight sk[k-1] and weighted sum tk[k-1].
func mergeNeutral(theta, q []float64, adjusted []bool) {
	L := len(q)
	nk := make([]int, L)
	thetak := make([]float64, L)
	sk := make([]float64, L)
	tk := make([]float64, L)

	// Step 1: the lowest level starts the first group.
	k := 1
	nk[0] = 1
	thetak[0] = theta[0]
	l := 2

	var (
		n    int
		th   float64
		s, t float64
	)
	for {
		// Step 2: start a new group with level l.
		n = 1
		th = theta[l-1]
		for {
			// Step 3: stable with respect to the group below.
			if thetak[k-1] <= th {
				// Step 6
				k++
				break
			}
			if n <= 1 {
				s = q[l-1]
				t = s * th
			}
			// Step 4: the group below is a single level that has not
			// been merged before.
			if nk[k-1] <= 1 {
				sk[k-1] = q[l-n-1]
				tk[k-1] = sk[k-1] * thetak[k-1]
			}
			// Step 5: join the current group with the group below.
			n += nk[k-1]
			s += sk[k-1]
			t += tk[k-1]
			sk[k-1] = s
			tk[k-1] = t
			th = t / s
			if k == 1 {
				break
			}
			k--
		}
		// Step 7
		if l == L {
			break
		}
		l++
		nk[k-1] = n
		thetak[k-1] = th
	}

	// Steps 8-11: walk back down, assigning each group's mean to its levels.
	for {
		if n > 1 {
			for {
				theta[l-1] = th
				adjusted[l-1] = true
				if n == 1 {
					break
				}
				l--
				n--
			}
		}
		if k == 1 {
			break
		}
		k--
		l--
		n = nk[k-1]
		th = thetak[k-1]
	}
}
