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
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spatialmodel/rcm/thermo"
	"github.com/spf13/cast"
)

type policy int

const (
	unset policy = iota
	dryAdiabat
	moistAdiabat
	constant
	profile
)

// LapseRate is a policy for the critical lapse rate [K/km] that
// convective adjustment enforces. The zero value is unset, which
// disables adjustment.
type LapseRate struct {
	policy policy
	values []float64
}

// DryAdiabat returns a LapseRate equal to the dry adiabatic
// lapse rate g/cp at every level.
func DryAdiabat() LapseRate { return LapseRate{policy: dryAdiabat} }

// MoistAdiabat returns a LapseRate that follows the saturated
// pseudoadiabat at the current temperature and pressure of each level.
// It is recalculated from the column state every time it is resolved.
func MoistAdiabat() LapseRate { return LapseRate{policy: moistAdiabat} }

// Constant returns a LapseRate of v [K/km] at every level.
func Constant(v float64) LapseRate {
	return LapseRate{policy: constant, values: []float64{v}}
}

// Profile returns a LapseRate with value v[i] [K/km] at level i.
func Profile(v []float64) LapseRate {
	return LapseRate{policy: profile, values: slices.Clone(v)}
}

// IsSet returns whether a lapse rate policy has been chosen.
func (lr LapseRate) IsSet() bool { return lr.policy != unset }

func (lr LapseRate) String() string {
	switch lr.policy {
	case unset:
		return "unset"
	case dryAdiabat:
		return "dry adiabat"
	case moistAdiabat:
		return "moist adiabat"
	case constant:
		return fmt.Sprintf("%g K/km", lr.values[0])
	default:
		return fmt.Sprintf("%v K/km", lr.values)
	}
}

// ParseLapseRate converts a configuration value into a LapseRate.
// v may be nil or an empty string (unset), a policy name, a number,
// or a list of numbers. Accepted policy names, ignoring case, are
// "DALR", "dry adiabat" and "dry-adiabat" for the dry adiabat, and
// "MALR", "moist adiabat", "moist-adiabat" and "pseudoadiabat" for
// the moist adiabat.
func ParseLapseRate(v interface{}) (LapseRate, error) {
	switch x := v.(type) {
	case nil:
		return LapseRate{}, nil
	case LapseRate:
		return x, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		switch s {
		case "", "none":
			return LapseRate{}, nil
		case "dalr", "dry adiabat", "dry-adiabat":
			return DryAdiabat(), nil
		case "malr", "moist adiabat", "moist-adiabat", "pseudoadiabat":
			return MoistAdiabat(), nil
		}
		if strings.HasPrefix(s, "[") {
			return parseProfile(s)
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return LapseRate{}, fmt.Errorf("akmaev: unknown lapse rate %q", x)
		}
		return checkedConstant(f)
	case []float64, []interface{}:
		return parseProfile(x)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return LapseRate{}, fmt.Errorf("akmaev: invalid lapse rate %v (%T)", v, v)
		}
		return checkedConstant(f)
	}
}

func parseProfile(v interface{}) (LapseRate, error) {
	vals, err := toFloat64SliceE(v)
	if err != nil {
		return LapseRate{}, fmt.Errorf("akmaev: parsing lapse rate profile: %v", err)
	}
	if len(vals) == 0 {
		return LapseRate{}, fmt.Errorf("%w: empty lapse rate profile", ErrShape)
	}
	for i, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return LapseRate{}, fmt.Errorf("akmaev: invalid lapse rate %g at level %d", f, i)
		}
	}
	return Profile(vals), nil
}

func checkedConstant(f float64) (LapseRate, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return LapseRate{}, fmt.Errorf("akmaev: invalid lapse rate %g", f)
	}
	return Constant(f), nil
}

// toFloat64SliceE casts a list of numbers, which may be a JSON
// array if it was set from a command line argument, to []float64.
func toFloat64SliceE(i interface{}) ([]float64, error) {
	switch v := i.(type) {
	case []float64:
		return slices.Clone(v), nil
	case []interface{}:
		o := make([]float64, len(v))
		for j, val := range v {
			f, err := cast.ToFloat64E(val)
			if err != nil {
				return nil, err
			}
			o[j] = f
		}
		return o, nil
	case string:
		var o []float64
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unable to cast %#v of type %T to []float64", i, i)
	}
}

// Resolve returns the critical lapse rate [K/km] at each level of a
// column with pressures p [hPa] and temperatures T [K]. It returns nil
// if lr is unset. A Profile must have the same length as the column.
// The moist adiabat is calculated from p and T on every call.
func (lr LapseRate) Resolve(p, T []float64) ([]float64, error) {
	if len(p) != len(T) {
		return nil, fmt.Errorf("%w: pressure=%d, temperature=%d", ErrShape, len(p), len(T))
	}
	n := len(T)
	switch lr.policy {
	case unset:
		return nil, nil
	case dryAdiabat:
		return fill(n, thermo.DryLapseRate()), nil
	case moistAdiabat:
		o := make([]float64, n)
		for i := range o {
			if !(T[i] > 0) || !(p[i] > 0) {
				return nil, fmt.Errorf("akmaev: moist lapse rate undefined for T=%g, p=%g at level %d", T[i], p[i], i)
			}
			o[i] = thermo.MoistLapseRate(T[i], p[i])
		}
		return o, nil
	case constant:
		return fill(n, lr.values[0]), nil
	default:
		if len(lr.values) != n {
			return nil, fmt.Errorf("%w: lapse rate profile has %d levels but column has %d",
				ErrShape, len(lr.values), n)
		}
		return slices.Clone(lr.values), nil
	}
}

func fill(n int, v float64) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = v
	}
	return o
}
