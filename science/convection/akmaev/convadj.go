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

package akmaev

import (
	"fmt"

	"github.com/spatialmodel/rcm"
)

// ConvectiveAdjustment instantly returns a column to a neutral
// lapse rate. The surface is adjusted together with the atmosphere
// when the column has a surface.
// It fulfils the github.com/spatialmodel/rcm.Process interface.
type ConvectiveAdjustment struct {
	lapseRate LapseRate

	// ncol is the number of levels in the column, including the surface.
	ncol int
}

// New returns a ConvectiveAdjustment for columns shaped like c that
// enforces lapse rate lr. An unset lr gives a process that makes no
// adjustment.
func New(c *rcm.Column, lr LapseRate) (*ConvectiveAdjustment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	_, T, _ := c.Profile()
	ca := &ConvectiveAdjustment{ncol: len(T)}
	if err := ca.SetLapseRate(lr); err != nil {
		return nil, err
	}
	return ca, nil
}

// SetLapseRate changes the critical lapse rate. A Profile must have
// one value for each level of the column including the surface, if any;
// otherwise an error wrapping ErrShape is returned and the previous
// lapse rate is kept.
func (ca *ConvectiveAdjustment) SetLapseRate(lr LapseRate) error {
	if lr.policy == profile && len(lr.values) != ca.ncol {
		return fmt.Errorf("%w: lapse rate profile has %d levels but column has %d",
			ErrShape, len(lr.values), ca.ncol)
	}
	ca.lapseRate = lr
	return nil
}

// LapseRate returns the current lapse rate policy.
func (ca *ConvectiveAdjustment) LapseRate() LapseRate { return ca.lapseRate }

// CriticalLapseRate returns the critical lapse rate [K/km] at each
// level of c, including the surface. It is recalculated from the
// current state of c on every call, and is nil if no lapse rate is set.
func (ca *ConvectiveAdjustment) CriticalLapseRate(c *rcm.Column) ([]float64, error) {
	p, T, _ := c.Profile()
	return ca.lapseRate.Resolve(p, T)
}

// Compute returns the temperature increments [K] that adjust c to
// the critical lapse rate, keyed by rcm.Tatm and, if c has a surface,
// rcm.Ts. The increments are independent of any time step. The
// resolved critical lapse rate is returned as the diagnostic
// "adj_lapse_rate".
func (ca *ConvectiveAdjustment) Compute(c *rcm.Column) (*rcm.Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	p, T, heatCap := c.Profile()
	if len(T) != ca.ncol {
		return nil, fmt.Errorf("%w: column has %d levels but process was configured for %d",
			ErrShape, len(T), ca.ncol)
	}
	n := c.NumLevels()
	r := rcm.NewResult()
	if !ca.lapseRate.IsSet() {
		r.Tendencies[rcm.Tatm] = make([]float64, n)
		if c.HasSurface {
			r.Tendencies[rcm.Ts] = []float64{0}
		}
		return r, nil
	}
	lapse, err := ca.lapseRate.Resolve(p, T)
	if err != nil {
		return nil, err
	}
	Tadj, err := Adjust(p, T, heatCap, lapse, TopDown)
	if err != nil {
		return nil, err
	}
	dT := make([]float64, len(T))
	for i := range dT {
		dT[i] = Tadj[i] - T[i]
	}
	r.Tendencies[rcm.Tatm] = dT[:n:n]
	if c.HasSurface {
		r.Tendencies[rcm.Ts] = dT[n:]
	}
	r.Diagnostics["adj_lapse_rate"] = lapse
	return r, nil
}
