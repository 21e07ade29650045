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
package rcmutil

import (
	"reflect"
	"testing"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/rcm/science/radiation/nband"
)

func TestToFloat64SliceE(t *testing.T) {
	tests := []struct {
		in   interface{}
		want []float64
	}{
		{in: 0.5, want: []float64{0.5}},
		{in: 2, want: []float64{2}},
		{in: "0.25", want: []float64{0.25}},
		{in: " [1, 2.5, 3] ", want: []float64{1, 2.5, 3}},
		{in: []float64{4, 5}, want: []float64{4, 5}},
		{in: []interface{}{int64(1), 2.5, "3"}, want: []float64{1, 2.5, 3}},
	}
	for _, test := range tests {
		have, err := toFloat64SliceE(test.in)
		if err != nil {
			t.Errorf("%#v: %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(have, test.want) {
			t.Errorf("%#v: have %v, want %v", test.in, have, test.want)
		}
	}
	for _, bad := range []interface{}{"abc", "[1, x]", []interface{}{"x"}, struct{}{}} {
		if _, err := toFloat64SliceE(bad); err == nil {
			t.Errorf("%#v: expected an error", bad)
		}
	}
}

func TestColumnConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Column.NumLevels", 3)
	cfg.Set("Column.SurfacePressure", 900.)
	cfg.Set("Column.WaterDepth", 2.)
	cfg.Set("Column.Surface", true)
	cfg.Set("Column.Ts", 300.)
	cfg.Set("Column.Tatm", "[220, 250, 280]")
	c, err := ColumnConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Tatm, []float64{220, 250, 280}) {
		t.Errorf("Tatm: have %v", c.Tatm)
	}
	if c.Ts != 300 {
		t.Errorf("Ts: have %g, want 300", c.Ts)
	}
	if c.LevBounds[3] != 900 {
		t.Errorf("surface pressure: have %g, want 900", c.LevBounds[3])
	}

	cfg.Set("Column.Surface", false)
	cfg.Set("Column.Tatm", []interface{}{230., 260., 290.})
	c, err = ColumnConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if c.HasSurface {
		t.Error("column should not have a surface")
	}
	if c.Tatm[2] != 290 {
		t.Errorf("Tatm: have %v", c.Tatm)
	}

	cfg.Set("Column.Tatm", "[220, 250]")
	if _, err = ColumnConfig(cfg); err == nil {
		t.Error("expected an error for a temperature profile of the wrong length")
	}
}

func TestConvectionConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Column.NumLevels", 4)
	cfg.Set("Column.Surface", true)
	cfg.Set("Column.Ts", 288.)
	cfg.Set("Column.SurfacePressure", 1000.)
	cfg.Set("Column.WaterDepth", 1.)
	c, err := ColumnConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		in   interface{}
		want string
	}{
		{in: "DALR", want: "dry adiabat"},
		{in: "malr", want: "moist adiabat"},
		{in: 6.5, want: "6.5 K/km"},
		{in: "", want: "unset"},
		{in: "[1, 2, 3, 4, 5]", want: "[1 2 3 4 5] K/km"},
	} {
		cfg.Set("Convection.LapseRate", test.in)
		ca, err := ConvectionConfig(cfg, c)
		if err != nil {
			t.Errorf("%v: %v", test.in, err)
			continue
		}
		if have := ca.LapseRate().String(); have != test.want {
			t.Errorf("%v: have %s, want %s", test.in, have, test.want)
		}
	}
	cfg.Set("Convection.LapseRate", "[1, 2, 3]")
	if _, err := ConvectionConfig(cfg, c); err == nil {
		t.Error("expected an error for a lapse rate profile of the wrong length")
	}
	cfg.Set("Convection.LapseRate", "steep")
	if _, err := ConvectionConfig(cfg, c); err == nil {
		t.Error("expected an error for an invalid lapse rate")
	}
}

func TestRadiationConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Column.NumLevels", 3)
	cfg.Set("Column.Surface", true)
	cfg.Set("Column.Ts", 288.)
	cfg.Set("Column.SurfacePressure", 1000.)
	cfg.Set("Column.WaterDepth", 1.)
	c, err := ColumnConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Set("Radiation.Band", "SW")
	cfg.Set("Radiation.Absorptivity", "[0.1, 0.2, 0.3]")
	cfg.Set("Radiation.AlbedoSfc", 0.3)
	cfg.Set("Radiation.FluxFromSpace", 340.)
	cfg.Set("Radiation.SurfaceEmissivity", 1.)
	r, err := RadiationConfig(cfg, c)
	if err != nil {
		t.Fatal(err)
	}
	if r.Band() != nband.Shortwave {
		t.Errorf("band: have %v, want shortwave", r.Band())
	}
	if !reflect.DeepEqual(r.Absorptivity(), []float64{0.1, 0.2, 0.3}) {
		t.Errorf("absorptivity: have %v", r.Absorptivity())
	}
	if r.AlbedoSfc() != 0.3 {
		t.Errorf("albedo: have %g, want 0.3", r.AlbedoSfc())
	}
	if r.FluxFromSpace() != 340 {
		t.Errorf("flux from space: have %g, want 340", r.FluxFromSpace())
	}

	cfg.Set("Radiation.Absorptivity", 1.5)
	if _, err = RadiationConfig(cfg, c); err == nil {
		t.Error("expected an error for absorptivity greater than 1")
	}
	cfg.Set("Radiation.Absorptivity", 0.1)
	cfg.Set("Radiation.Band", "microwave")
	if _, err = RadiationConfig(cfg, c); err == nil {
		t.Error("expected an error for an invalid band")
	}
}

func TestCheckLogFile(t *testing.T) {
	if have := checkLogFile("", ""); have != "" {
		t.Errorf("have %q, want empty", have)
	}
	if have, want := checkLogFile("", "out/result.nc"), "out/result.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
	if have, want := checkLogFile("my.log", "out/result.nc"), "my.log"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RCM_TEST_DIR", dir)
	f, err := checkOutputFile("${RCM_TEST_DIR}/out.nc")
	if err != nil {
		t.Fatal(err)
	}
	if want := dir + "/out.nc"; f != want {
		t.Errorf("have %q, want %q", f, want)
	}
	if _, err = checkOutputFile(dir + "/missing/out.nc"); err == nil {
		t.Error("expected an error for a missing output directory")
	}
}
