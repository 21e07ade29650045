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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/spatialmodel/rcm"
)

// variableInfo holds the description and units of output variables.
var variableInfo = map[string]struct {
	description, units string
}{
	"lev":                     {"Pressure at layer centers", "hPa"},
	"lev_bounds":              {"Pressure at layer interfaces", "hPa"},
	"Tatm":                    {"Atmospheric temperature", "K"},
	"Ts":                      {"Surface temperature", "K"},
	"HeatCapacity":            {"Layer heat capacity", "J/m²/K"},
	"SfcHeatCapacity":         {"Surface heat capacity", "J/m²/K"},
	"adj_lapse_rate":          {"Critical lapse rate for convective adjustment", "K/km"},
	"emission":                {"Emission from each layer in each direction", "W/m²"},
	"flux_up":                 {"Upward radiative flux at layer interfaces", "W/m²"},
	"flux_down":               {"Downward radiative flux at layer interfaces", "W/m²"},
	"flux_net":                {"Net upward radiative flux at layer interfaces", "W/m²"},
	"absorbed_total":          {"Total flux absorbed by the atmosphere", "W/m²"},
	"flux_from_space":         {"Downward flux entering the top of the atmosphere", "W/m²"},
	"flux_to_sfc":             {"Downward flux reaching the surface", "W/m²"},
	"flux_from_sfc":           {"Upward flux emitted by the surface", "W/m²"},
	"flux_to_space":           {"Upward flux leaving the top of the atmosphere", "W/m²"},
	"flux_components_top_sfc": {"Contribution of the surface to the flux to space", "W/m²"},
	"flux_components_top":     {"Contribution of each layer to the flux to space", "W/m²"},
	"flux_components_bottom":  {"Contribution of each layer to the flux to the surface", "W/m²"},
}

// Units returns the units of the output variable with the given name,
// or an empty string if the variable is unknown.
func Units(name string) string {
	if strings.HasPrefix(name, "d") {
		if info, ok := variableInfo[name[1:]]; ok && info.units == "K" {
			return "K"
		}
	}
	if strings.HasPrefix(name, "heating_") {
		return "W/m²"
	}
	return variableInfo[name].units
}

func description(name string) string {
	switch {
	case strings.HasPrefix(name, "heating_"):
		return "Radiative heating rate of " + variableInfo[strings.TrimPrefix(name, "heating_")].description
	case strings.HasPrefix(name, "d") && variableInfo[name[1:]].units == "K":
		return "Convective adjustment of " + variableInfo[name[1:]].description
	}
	return variableInfo[name].description
}

// fluxUnit returns f [W/m²] with its dimensions attached.
func fluxUnit(f float64) *unit.Unit {
	return unit.New(f, unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3})
}

// enthalpyUnit returns e [J/m²] with its dimensions attached.
func enthalpyUnit(e float64) *unit.Unit {
	return unit.New(e, unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -2})
}

// temperatureUnit returns T [K] with its dimensions attached.
func temperatureUnit(T float64) *unit.Unit {
	return unit.New(T, unit.Dimensions{unit.TemperatureDim: 1})
}

type outputVar struct {
	dim  string
	data *sparse.DenseArray

	// description overrides the default description of the variable.
	description string
}

func newOutputVar(dim string, v []float64) outputVar {
	d := sparse.ZerosDense(len(v))
	copy(d.Elements, v)
	return outputVar{dim: dim, data: d}
}

// outputVars collects the state of c and the contents of r, named with
// the given tendency prefix, and assigns each a dimension.
func outputVars(c *rcm.Column, r *rcm.Result, tendencyPrefix string) (map[string]outputVar, error) {
	n := c.NumLevels()
	_, T, _ := c.Profile()
	dimOf := func(name string, length int) (string, error) {
		switch {
		case length == 1:
			return "scalar", nil
		case length == n:
			return "lev", nil
		case length == n+1 && strings.HasPrefix(name, "flux_"):
			return "lev_bounds", nil
		case length == len(T):
			return "col", nil
		default:
			return "", fmt.Errorf("rcm: variable %s has length %d, which does not match the column", name, length)
		}
	}
	o := map[string]outputVar{
		"lev":          newOutputVar("lev", c.Lev),
		"lev_bounds":   newOutputVar("lev_bounds", c.LevBounds),
		"Tatm":         newOutputVar("lev", c.Tatm),
		"HeatCapacity": newOutputVar("lev", c.HeatCapacity),
	}
	if c.HasSurface {
		o["Ts"] = newOutputVar("scalar", []float64{c.Ts})
		o["SfcHeatCapacity"] = newOutputVar("scalar", []float64{c.SfcHeatCapacity})
	}
	if r == nil {
		return o, nil
	}
	for name, v := range r.Tendencies {
		name = tendencyPrefix + name
		dim, err := dimOf(name, len(v))
		if err != nil {
			return nil, err
		}
		o[name] = newOutputVar(dim, v)
	}
	for name, v := range r.Diagnostics {
		dim, err := dimOf(name, len(v))
		if err != nil {
			return nil, err
		}
		o[name] = newOutputVar(dim, v)
	}
	return o, nil
}

// WriteNetCDF writes column c and result r to w in NetCDF format.
// Tendencies are named by adding tendencyPrefix to the state variable
// name. r may be nil. derived holds the names and expressions of
// additional variables to calculate from the others, for example
// {"HeatingRate": "heating_Tatm * 86400 / HeatCapacity"}.
func WriteNetCDF(w *os.File, c *rcm.Column, r *rcm.Result, tendencyPrefix string, derived map[string]string) error {
	vars, err := outputVars(c, r, tendencyPrefix)
	if err != nil {
		return err
	}
	if err = deriveVars(vars, derived); err != nil {
		return err
	}
	_, T, _ := c.Profile()
	h := cdf.NewHeader(
		[]string{"lev", "lev_bounds", "col", "scalar"},
		[]int{c.NumLevels(), c.NumLevels() + 1, len(T), 1})
	h.AddAttribute("", "comment", "RCM single column output file")
	h.AddAttribute("", "rcm_version", rcm.Version)

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		h.AddVariable(name, []string{vars[name].dim}, []float64{0})
		desc := vars[name].description
		if desc == "" {
			desc = description(name)
		}
		h.AddAttribute(name, "description", desc)
		h.AddAttribute(name, "units", Units(name))
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	for _, name := range names {
		if err = writeNCF(f, name, vars[name].data); err != nil {
			return fmt.Errorf("rcm: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	end := f.Header.Lengths(Var)
	if len(end) != 1 || end[0] != len(data.Elements) {
		return fmt.Errorf("dims are %v but array length is %d", end, len(data.Elements))
	}
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	_, err := w.Write(data.Elements)
	return err
}

// ReadNetCDF reads the variables in a file created by WriteNetCDF.
func ReadNetCDF(rw cdf.ReaderWriterAt) (map[string]*sparse.DenseArray, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rcm: reading netcdf file: %v", err)
	}
	o := make(map[string]*sparse.DenseArray)
	for _, v := range f.Header.Variables() {
		d := sparse.ZerosDense(f.Header.Lengths(v)...)
		r := f.Reader(v, nil, nil)
		if _, err = r.Read(d.Elements); err != nil {
			return nil, fmt.Errorf("rcm: reading variable %s: %v", v, err)
		}
		o[v] = d
	}
	return o, nil
}
