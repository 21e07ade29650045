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
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/spatialmodel/rcm"
	"github.com/spatialmodel/rcm/thermo"
	"gonum.org/v1/gonum/floats"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func testColumn(t *testing.T, tatm []float64, ts float64) *rcm.Column {
	t.Helper()
	c, err := rcm.NewColumn(rcm.NumLevels(len(tatm)), rcm.Temperatures(tatm),
		rcm.SurfaceTemperature(ts))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTwoLayerGrey(t *testing.T) {
	c := testColumn(t, []float64{250, 280}, 288)
	r, err := New(2, Longwave, Absorptivity(0.5), SurfaceEmissivity(1))
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.RadiativeHeating(c)
	if err != nil {
		t.Fatal(err)
	}
	e0 := 0.5 * thermo.BlackbodyEmission(250)
	e1 := 0.5 * thermo.BlackbodyEmission(280)
	sfc := thermo.BlackbodyEmission(288)

	wantDown := []float64{0, e0, 0.5*e0 + e1}
	wantUp := []float64{0.5*(0.5*sfc+e1) + e0, 0.5*sfc + e1, sfc}
	if !floats.EqualApprox(f.FluxDown, wantDown, 1.e-9) {
		t.Errorf("down: have %v, want %v", f.FluxDown, wantDown)
	}
	if !floats.EqualApprox(f.FluxUp, wantUp, 1.e-9) {
		t.Errorf("up: have %v, want %v", f.FluxUp, wantUp)
	}
	if f.FluxToSpace != f.FluxUp[0] || f.FluxToSfc != f.FluxDown[2] || f.FluxFromSfc != sfc {
		t.Errorf("boundary fluxes: %+v", f)
	}
	for i := range f.FluxNet {
		if f.FluxNet[i] != f.FluxUp[i]-f.FluxDown[i] {
			t.Errorf("net flux %d: have %g, want %g", i, f.FluxNet[i], f.FluxUp[i]-f.FluxDown[i])
		}
	}
	// Each layer absorbs half of what passes through it from each
	// direction and emits in both directions.
	want0 := 0.5*wantUp[1] - 2*e0
	want1 := 0.5*sfc + 0.5*wantDown[1] - 2*e1
	if different(f.Absorbed[0], want0, 1.e-9) || different(f.Absorbed[1], want1, 1.e-9) {
		t.Errorf("absorbed: have %v, want [%g %g]", f.Absorbed, want0, want1)
	}
}

func TestEnergyConservation(t *testing.T) {
	c := testColumn(t, []float64{210, 230, 250, 270, 280}, 290)
	r, err := New(5, Longwave, Absorptivity(0.1, 0.3, 0.05, 0.6, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.RadiativeHeating(c)
	if err != nil {
		t.Fatal(err)
	}
	// With no flux entering the column, every emitted unit is either
	// absorbed elsewhere or leaves through a boundary.
	if sum := f.AbsorbedTotal + f.FluxToSpace + f.FluxToSfc; math.Abs(sum) > 1.e-10 {
		t.Errorf("Σ absorbed + flux to space + flux to surface = %g; want 0", sum)
	}
	if different(f.AbsorbedTotal, floats.Sum(f.Absorbed), 1.e-12) {
		t.Errorf("absorbed total: have %g, want %g", f.AbsorbedTotal, floats.Sum(f.Absorbed))
	}
	if f.AbsorbedTotal >= 0 {
		t.Errorf("an atmosphere with no external forcing should cool, but absorbed %g", f.AbsorbedTotal)
	}
}

func TestSurfaceBudget(t *testing.T) {
	c := testColumn(t, []float64{220, 250, 280}, 290)
	r, err := New(3, Longwave, Absorptivity(0.4), SurfaceEmissivity(0.9),
		AlbedoSfc(0.3), FluxFromSpace(50))
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Compute(c)
	if err != nil {
		t.Fatal(err)
	}
	toSpace, _ := res.Diagnostic("flux_to_space")
	fromSpace, _ := res.Diagnostic("flux_from_space")
	total := floats.Sum(res.Tendencies[rcm.Tatm]) + res.Tendencies[rcm.Ts][0]
	if different(total, fromSpace-toSpace, testTolerance) {
		t.Errorf("total heating: have %g, want %g", total, fromSpace-toSpace)
	}
	fromSfc, _ := res.Diagnostic("flux_from_sfc")
	if want := 0.9 * thermo.BlackbodyEmission(290); different(fromSfc, want, 1.e-12) {
		t.Errorf("flux from surface: have %g, want %g", fromSfc, want)
	}
	for _, name := range []string{"flux_from_space", "flux_to_sfc", "flux_from_sfc", "flux_to_space", "absorbed_total"} {
		if _, ok := res.Diagnostic(name); !ok {
			t.Errorf("missing scalar diagnostic %s", name)
		}
	}
	if len(res.Diagnostics["flux_up"]) != 4 || len(res.Diagnostics["emission"]) != 3 {
		t.Error("wrong diagnostic lengths")
	}
	if _, ok := res.Diagnostics["flux_components_top"]; ok {
		t.Error("flux components should only be calculated when requested")
	}
}

func TestShortwave(t *testing.T) {
	c := testColumn(t, []float64{220, 250, 280}, 290)
	r, err := New(3, Shortwave, Absorptivity(0.2), FluxFromSpace(340), SurfaceEmissivity(1))
	if err != nil {
		t.Fatal(err)
	}
	e, err := r.Emission(c.Tatm)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(e, []float64{0, 0, 0}) {
		t.Errorf("shortwave emission: have %v, want zeros", e)
	}
	if a := r.Absorptivity(); !floats.Equal(a, []float64{0.2, 0.2, 0.2}) {
		t.Errorf("absorptivity: have %v", a)
	}
	f, err := r.RadiativeHeating(c)
	if err != nil {
		t.Fatal(err)
	}
	if want := 340 * 0.8 * 0.8 * 0.8; different(f.FluxToSfc, want, 1.e-12) {
		t.Errorf("flux to surface: have %g, want %g", f.FluxToSfc, want)
	}
	// The surface does not emit in the shortwave.
	if f.FluxFromSfc != 0 || f.FluxToSpace != 0 {
		t.Errorf("flux from surface %g and to space %g should be zero", f.FluxFromSfc, f.FluxToSpace)
	}
	want := []float64{340 * 0.2, 340 * 0.8 * 0.2, 340 * 0.8 * 0.8 * 0.2}
	if !floats.EqualApprox(f.Absorbed, want, 1.e-10) {
		t.Errorf("absorbed: have %v, want %v", f.Absorbed, want)
	}
}

func TestTransparent(t *testing.T) {
	c := testColumn(t, []float64{220, 250, 280}, 290)
	r, err := New(3, Shortwave, FluxFromSpace(340), AlbedoSfc(1))
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.Compute(c)
	if err != nil {
		t.Fatal(err)
	}
	for i, h := range res.Tendencies[rcm.Tatm] {
		if h != 0 {
			t.Errorf("heating at level %d: have %g, want 0", i, h)
		}
	}
	toSpace, _ := res.Diagnostic("flux_to_space")
	toSfc, _ := res.Diagnostic("flux_to_sfc")
	if toSpace != 340 || toSfc != 340 {
		t.Errorf("flux to space %g and to surface %g should both be 340", toSpace, toSfc)
	}
}

func TestSetAbsorptivity(t *testing.T) {
	r, err := New(3, Longwave)
	if err != nil {
		t.Fatal(err)
	}
	if a := r.Absorptivity(); !floats.Equal(a, []float64{0, 0, 0}) {
		t.Errorf("default absorptivity: have %v", a)
	}
	if err := r.SetAbsorptivity(0.1, 0.2, 0.3); err != nil {
		t.Fatal(err)
	}
	if err := r.SetAbsorptivity(0.5, 0.5); !errors.Is(err, ErrShape) {
		t.Errorf("have %v, want ErrShape", err)
	}
	if err := r.SetAbsorptivity(); !errors.Is(err, ErrShape) {
		t.Errorf("have %v, want ErrShape", err)
	}
	if err := r.SetAbsorptivity(0.1, 1.5, 0.3); err == nil {
		t.Error("absorptivity above one should be an error")
	}
	if a := r.Absorptivity(); !floats.Equal(a, []float64{0.1, 0.2, 0.3}) {
		t.Errorf("failed set changed absorptivity to %v", a)
	}
	if err := r.SetTransmissivity(0.25); err != nil {
		t.Fatal(err)
	}
	if a := r.Emissivity(); !floats.Equal(a, []float64{0.75, 0.75, 0.75}) {
		t.Errorf("longwave emissivity: have %v", a)
	}
	if err := r.SetAlbedoSfc(-0.1); err == nil {
		t.Error("negative albedo should be an error")
	}
	if _, err := New(0, Longwave); err == nil {
		t.Error("zero levels should be an error")
	}
	if _, err := New(4, Longwave, Absorptivity(0.1, 0.2)); !errors.Is(err, ErrShape) {
		t.Errorf("New with bad absorptivity: have %v, want ErrShape", err)
	}

	c := testColumn(t, []float64{220, 250}, 290)
	if _, err := r.Compute(c); !errors.Is(err, ErrShape) {
		t.Errorf("mismatched column: have %v, want ErrShape", err)
	}
}

func TestParseBand(t *testing.T) {
	for s, want := range map[string]Band{"longwave": Longwave, "LW": Longwave, "Shortwave": Shortwave, "sw": Shortwave} {
		b, err := ParseBand(s)
		if err != nil {
			t.Error(err)
		}
		if b != want {
			t.Errorf("%s: have %v, want %v", s, b, want)
		}
	}
	if _, err := ParseBand("infrared"); err == nil {
		t.Error("invalid band should be an error")
	}
}

func randomRadiation(t *testing.T, rnd *rand.Rand, n int, options ...Option) (*Radiation, *rcm.Column) {
	t.Helper()
	tatm := make([]float64, n)
	a := make([]float64, n)
	for i := range tatm {
		tatm[i] = 200 + 100*rnd.Float64()
		a[i] = rnd.Float64()
	}
	c := testColumn(t, tatm, 250+50*rnd.Float64())
	r, err := New(n, Longwave, append([]Option{Absorptivity(a...)}, options...)...)
	if err != nil {
		t.Fatal(err)
	}
	return r, c
}
