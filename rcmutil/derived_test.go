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
	"math"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/rcm"
)

func TestDeriveVars(t *testing.T) {
	c, err := rcm.NewColumn(rcm.NumLevels(3), rcm.Temperatures([]float64{220, 250, 280}))
	if err != nil {
		t.Fatal(err)
	}
	r := rcm.NewResult()
	r.Tendencies[rcm.Tatm] = []float64{1, 2, 3}
	r.Tendencies[rcm.Ts] = []float64{-4}
	vars, err := outputVars(c, r, "heating_")
	if err != nil {
		t.Fatal(err)
	}
	err = deriveVars(vars, map[string]string{
		"Warmer":     "Tatm + 10",
		"Warmest":    "Warmer + Ts",
		"RateKDay":   "heating_Tatm * 86400 / HeatCapacity",
		"SfcPlusOne": "Ts + heating_Ts + 1",
		"Root":       "pow(Tatm, 0.5)",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]struct {
		dim  string
		vals []float64
	}{
		"Warmer":     {"lev", []float64{230, 260, 290}},
		"Warmest":    {"lev", []float64{230 + c.Ts, 260 + c.Ts, 290 + c.Ts}},
		"RateKDay":   {"lev", []float64{86400 / c.HeatCapacity[0], 2 * 86400 / c.HeatCapacity[1], 3 * 86400 / c.HeatCapacity[2]}},
		"SfcPlusOne": {"scalar", []float64{c.Ts - 3}},
		"Root":       {"lev", []float64{math.Sqrt(220), math.Sqrt(250), math.Sqrt(280)}},
	}
	for name, w := range want {
		v, ok := vars[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if v.dim != w.dim {
			t.Errorf("%s: have dim %s, want %s", name, v.dim, w.dim)
		}
		if len(v.data.Elements) != len(w.vals) {
			t.Errorf("%s: %s", name, pretty.Diff(v.data.Elements, w.vals))
			continue
		}
		for i, x := range w.vals {
			if different(v.data.Elements[i], x, 1e-12) {
				t.Errorf("%s[%d]: have %g, want %g", name, i, v.data.Elements[i], x)
			}
		}
	}
	if have := vars["Warmest"].description; have != "Warmer + Ts" {
		t.Errorf("description: have %q", have)
	}
}

func TestDeriveVarsErrors(t *testing.T) {
	c, err := rcm.NewColumn(rcm.NumLevels(3))
	if err != nil {
		t.Fatal(err)
	}
	for name, exprs := range map[string]map[string]string{
		"undefined": {"A": "Tatm + missing"},
		"circular":  {"A": "B + 1", "B": "A + 1"},
		"syntax":    {"A": "Tatm +* 2"},
		"duplicate": {"Tatm": "Tatm * 2"},
		"dims":      {"A": "Tatm + lev_bounds"},
		"function":  {"A": "exp(Tatm, 2)"},
	} {
		vars, err := outputVars(c, nil, "d")
		if err != nil {
			t.Fatal(err)
		}
		if err := deriveVars(vars, exprs); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	want := map[string]string{"a": "Tatm + 1", "b": "2 * Ts"}
	for _, in := range []interface{}{
		want,
		map[string]interface{}{"a": "Tatm + 1", "b": "2 * Ts"},
		`{"a": "Tatm + 1", "b": "2 * Ts"}`,
	} {
		cfg.Set("vars", in)
		have, err := getStringMapString("vars", cfg)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(have, want); len(diff) > 0 {
			t.Errorf("%#v: %v", in, diff)
		}
	}
	cfg.Set("vars", "")
	if have, err := getStringMapString("vars", cfg); err != nil || len(have) != 0 {
		t.Errorf("empty: have %v, %v", have, err)
	}
	cfg.Set("vars", "{not json")
	if _, err := getStringMapString("vars", cfg); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestCheckOutputVars(t *testing.T) {
	t.Setenv("RCM_TEST_SCALE", "86400")
	have := checkOutputVars(map[string]string{"Rate": "heating_Tatm *\n${RCM_TEST_SCALE}"})
	if want := "heating_Tatm * 86400"; have["Rate"] != want {
		t.Errorf("have %q, want %q", have["Rate"], want)
	}
}
