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

// Package rcm holds the column state shared by the radiative and
// convective physics schemes in the science subpackages, and the
// contract those schemes fulfil. Time integration is left to the caller.
package rcm

import "sort"

// Version gives the version number.
const Version = "0.1.0"

// Names of the column state variables.
const (
	Tatm = "Tatm" // atmospheric temperature
	Ts   = "Ts"   // surface temperature
)

// Tendencies maps state variable names to a value for each of their
// elements. Surface values have length one.
type Tendencies map[string][]float64

// Result holds the output of a single Process computation. A new
// Result is created for every call.
type Result struct {
	// Tendencies are per-step increments or heating rates, depending
	// on the process, keyed by state variable name.
	Tendencies Tendencies

	// Diagnostics are named quantities computed along the way.
	// Scalars have length one.
	Diagnostics map[string][]float64
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{
		Tendencies:  make(Tendencies),
		Diagnostics: make(map[string][]float64),
	}
}

// Diagnostic returns the scalar diagnostic with the given name
// and whether it exists.
func (r *Result) Diagnostic(name string) (float64, bool) {
	v, ok := r.Diagnostics[name]
	if !ok || len(v) != 1 {
		return 0, false
	}
	return v[0], true
}

// Names returns the sorted names of the diagnostics in r.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Diagnostics))
	for n := range r.Diagnostics {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Process is a column physics scheme. Compute reads the column state
// and returns its result without modifying c.
type Process interface {
	Compute(c *Column) (*Result, error)
}

// ProcessFunc is an adapter to allow the use of ordinary functions
// as processes.
type ProcessFunc func(c *Column) (*Result, error)

// Compute calls f(c).
func (f ProcessFunc) Compute(c *Column) (*Result, error) { return f(c) }
