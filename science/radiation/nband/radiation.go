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

// Package nband is a two-stream band radiation model for a single
// column, including the grey and semi-grey cases. Each layer absorbs a
// fraction of the radiation passing through it and, in the longwave
// band, emits with an emissivity equal to its absorptivity.
package nband

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialmodel/rcm"
	"github.com/spatialmodel/rcm/thermo"
	"github.com/spatialmodel/rcm/transmissivity"
)

// ErrShape is returned when a configuration array does not match the
// number of atmospheric levels and is not a scalar.
var ErrShape = errors.New("nband: array shape mismatch")

// Radiation is a band radiation model.
// It fulfils the github.com/spatialmodel/rcm.Process interface.
// Configuration persists across calls until it is changed, but a
// Radiation must not be used from more than one goroutine at a time.
type Radiation struct {
	band Band
	nlev int
	tr   *transmissivity.Transmissivity

	albedoSfc     float64
	fluxFromSpace float64
	fluxFromSfc   float64
	sfcEmissivity float64
	components    bool
}

// Option configures a Radiation.
type Option func(*Radiation) error

// Absorptivity sets the absorptivity of each layer. A single value
// applies to every layer.
func Absorptivity(a ...float64) Option {
	return func(r *Radiation) error { return r.SetAbsorptivity(a...) }
}

// Transmissivity sets the transmissivity of each layer. A single value
// applies to every layer.
func Transmissivity(t ...float64) Option {
	return func(r *Radiation) error { return r.SetTransmissivity(t...) }
}

// AlbedoSfc sets the fraction of downward flux that the surface reflects.
func AlbedoSfc(a float64) Option {
	return func(r *Radiation) error { return r.SetAlbedoSfc(a) }
}

// FluxFromSpace sets the downward flux entering the top of the column [W/m²].
func FluxFromSpace(f float64) Option {
	return func(r *Radiation) error { return r.SetFluxFromSpace(f) }
}

// FluxFromSfc sets the upward flux emitted by the surface [W/m²],
// not including reflection.
func FluxFromSfc(f float64) Option {
	return func(r *Radiation) error { return r.SetFluxFromSfc(f) }
}

// SurfaceEmissivity sets the emissivity of the surface. If it is
// greater than zero and the band emits, the flux emitted by a column's
// surface is calculated from its temperature instead of being set
// by FluxFromSfc.
func SurfaceEmissivity(e float64) Option {
	return func(r *Radiation) error {
		if !(e >= 0 && e <= 1) {
			return fmt.Errorf("nband: surface emissivity must be between 0 and 1 but is %g", e)
		}
		r.sfcEmissivity = e
		return nil
	}
}

// Components specifies whether Compute should include the flux
// attribution diagnostics in its result.
func Components(b bool) Option {
	return func(r *Radiation) error {
		r.components = b
		return nil
	}
}

// New returns a Radiation model for nlev atmospheric layers in the given
// band. Unless set otherwise, the atmosphere is transparent, the surface
// is black, and there is no flux into the column from either boundary.
func New(nlev int, band Band, options ...Option) (*Radiation, error) {
	if nlev < 1 {
		return nil, fmt.Errorf("nband: number of levels must be at least 1 but is %d", nlev)
	}
	if band != Longwave && band != Shortwave {
		return nil, fmt.Errorf("nband: invalid band %v", band)
	}
	r := &Radiation{band: band, nlev: nlev}
	if err := r.SetAbsorptivity(0); err != nil {
		return nil, err
	}
	for _, o := range options {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Band returns the spectral band of r.
func (r *Radiation) Band() Band { return r.band }

// NumLevels returns the number of atmospheric layers.
func (r *Radiation) NumLevels() int { return r.nlev }

// broadcast expands a scalar to every level and checks the length of
// a profile.
func (r *Radiation) broadcast(name string, v []float64) ([]float64, error) {
	switch len(v) {
	case 1:
		o := make([]float64, r.nlev)
		for i := range o {
			o[i] = v[0]
		}
		return o, nil
	case r.nlev:
		return append([]float64(nil), v...), nil
	default:
		return nil, fmt.Errorf("%w: %s has %d values but there are %d levels; it must be a scalar or match the atmospheric grid",
			ErrShape, name, len(v), r.nlev)
	}
}

// SetAbsorptivity sets the absorptivity of each layer, which must be
// between 0 and 1. a must hold either one value, which applies to every
// layer, or one value per layer. If a is invalid, the previous
// absorptivity is kept.
func (r *Radiation) SetAbsorptivity(a ...float64) error {
	v, err := r.broadcast("absorptivity", a)
	if err != nil {
		return err
	}
	tr, err := transmissivity.New(v)
	if err != nil {
		return fmt.Errorf("nband: %v", err)
	}
	r.tr = tr
	return nil
}

// SetTransmissivity sets the absorptivity of each layer to one minus t.
func (r *Radiation) SetTransmissivity(t ...float64) error {
	v, err := r.broadcast("transmissivity", t)
	if err != nil {
		return err
	}
	for i := range v {
		v[i] = 1 - v[i]
	}
	return r.SetAbsorptivity(v...)
}

// SetAlbedoSfc sets the surface albedo, which must be between 0 and 1.
func (r *Radiation) SetAlbedoSfc(a float64) error {
	if !(a >= 0 && a <= 1) {
		return fmt.Errorf("nband: surface albedo must be between 0 and 1 but is %g", a)
	}
	r.albedoSfc = a
	return nil
}

// SetFluxFromSpace sets the downward flux entering the top of the column [W/m²].
func (r *Radiation) SetFluxFromSpace(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("nband: invalid flux from space %g", f)
	}
	r.fluxFromSpace = f
	return nil
}

// SetFluxFromSfc sets the upward flux emitted by the surface [W/m²].
func (r *Radiation) SetFluxFromSfc(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("nband: invalid flux from surface %g", f)
	}
	r.fluxFromSfc = f
	return nil
}

// Absorptivity returns a copy of the absorptivity of each layer.
func (r *Radiation) Absorptivity() []float64 { return r.tr.Absorptivity() }

// Transmissivity returns a copy of the transmissivity of each layer.
func (r *Radiation) Transmissivity() []float64 { return r.tr.Transmissivity() }

// Emissivity returns the emissivity of each layer, which equals the
// absorptivity in bands that emit and is zero otherwise.
func (r *Radiation) Emissivity() []float64 {
	if !r.band.Emits() {
		return make([]float64, r.nlev)
	}
	return r.tr.Absorptivity()
}

// AlbedoSfc returns the surface albedo.
func (r *Radiation) AlbedoSfc() float64 { return r.albedoSfc }

// FluxFromSpace returns the downward flux entering the top of the column.
func (r *Radiation) FluxFromSpace() float64 { return r.fluxFromSpace }

// Emission returns the flux [W/m²] emitted in each direction by each
// layer at temperatures tatm [K].
func (r *Radiation) Emission(tatm []float64) ([]float64, error) {
	if len(tatm) != r.nlev {
		return nil, fmt.Errorf("%w: %d temperatures for %d levels", ErrShape, len(tatm), r.nlev)
	}
	eps := r.Emissivity()
	e := make([]float64, r.nlev)
	for i, T := range tatm {
		if !(T > 0) || math.IsInf(T, 0) {
			return nil, fmt.Errorf("nband: temperature at level %d must be positive but is %g", i, T)
		}
		e[i] = eps[i] * thermo.BlackbodyEmission(T)
	}
	return e, nil
}

// surfaceEmission returns the flux emitted upward by the surface of c.
func (r *Radiation) surfaceEmission(c *rcm.Column) float64 {
	if c.HasSurface && r.band.Emits() && r.sfcEmissivity > 0 {
		return r.sfcEmissivity * thermo.BlackbodyEmission(c.Ts)
	}
	return r.fluxFromSfc
}

// Fluxes holds the result of a radiative transfer calculation.
// Interface arrays have one more element than there are layers;
// interface 0 is the top of the atmosphere and the last interface
// is the surface. All values are in W/m².
type Fluxes struct {
	Emission []float64
	FluxDown []float64
	FluxUp   []float64
	FluxNet  []float64

	// Absorbed is the flux convergence in each layer.
	Absorbed      []float64
	AbsorbedTotal float64

	FluxFromSpace float64
	FluxToSfc     float64
	FluxFromSfc   float64
	FluxToSpace   float64

	// SfcAbsorbed is the net flux absorbed by the surface,
	// FluxToSfc minus the upward flux leaving it.
	SfcAbsorbed float64
}

func (r *Radiation) checkColumn(c *rcm.Column) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NumLevels() != r.nlev {
		return fmt.Errorf("%w: column has %d levels but radiation was configured for %d",
			ErrShape, c.NumLevels(), r.nlev)
	}
	return nil
}

// RadiativeHeating calculates the upward and downward fluxes through
// column c and the resulting flux convergence in each layer.
func (r *Radiation) RadiativeHeating(c *rcm.Column) (*Fluxes, error) {
	if err := r.checkColumn(c); err != nil {
		return nil, err
	}
	e, err := r.Emission(c.Tatm)
	if err != nil {
		return nil, err
	}
	f := &Fluxes{
		Emission:      e,
		FluxFromSpace: r.fluxFromSpace,
		FluxFromSfc:   r.surfaceEmission(c),
	}
	n := r.nlev
	f.FluxDown = r.tr.FluxDown(r.fluxFromSpace, e)
	f.FluxToSfc = f.FluxDown[n]
	f.FluxUp = r.tr.FluxUp(f.FluxFromSfc+r.albedoSfc*f.FluxToSfc, e)
	f.FluxToSpace = f.FluxUp[0]
	f.FluxNet = make([]float64, n+1)
	for i := range f.FluxNet {
		f.FluxNet[i] = f.FluxUp[i] - f.FluxDown[i]
	}
	f.Absorbed = make([]float64, n)
	for k := 0; k < n; k++ {
		// Net upward flux entering from below minus net upward flux
		// leaving through the top.
		f.Absorbed[k] = f.FluxNet[k+1] - f.FluxNet[k]
		f.AbsorbedTotal += f.Absorbed[k]
	}
	f.SfcAbsorbed = f.FluxToSfc - f.FluxUp[n]
	return f, nil
}

// Compute returns the radiative heating rates [W/m²] of the atmosphere
// and, if c has a surface, of the surface, along with the flux
// diagnostics.
func (r *Radiation) Compute(c *rcm.Column) (*rcm.Result, error) {
	f, err := r.RadiativeHeating(c)
	if err != nil {
		return nil, err
	}
	res := rcm.NewResult()
	res.Tendencies[rcm.Tatm] = f.Absorbed
	if c.HasSurface {
		res.Tendencies[rcm.Ts] = []float64{f.SfcAbsorbed}
	}
	d := res.Diagnostics
	d["emission"] = f.Emission
	d["flux_down"] = f.FluxDown
	d["flux_up"] = f.FluxUp
	d["flux_net"] = f.FluxNet
	d["absorbed_total"] = []float64{f.AbsorbedTotal}
	d["flux_from_space"] = []float64{f.FluxFromSpace}
	d["flux_to_sfc"] = []float64{f.FluxToSfc}
	d["flux_from_sfc"] = []float64{f.FluxFromSfc}
	d["flux_to_space"] = []float64{f.FluxToSpace}
	if r.components {
		sfc, top, err := r.FluxComponentsTop(c)
		if err != nil {
			return nil, err
		}
		bottom, err := r.FluxComponentsBottom(c)
		if err != nil {
			return nil, err
		}
		d["flux_components_top_sfc"] = []float64{sfc}
		d["flux_components_top"] = top
		d["flux_components_bottom"] = bottom
	}
	return res, nil
}
