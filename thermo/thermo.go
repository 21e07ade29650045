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

// Package thermo holds physical constants and thermodynamic
// property functions of moist air used by the column physics.
// Pressures are in hPa and temperatures are in K unless noted.
package thermo

import "math"

// Physical constants
const (
	G     = 9.8       // gravitational acceleration [m/s2]
	Cp    = 1004.     // specific heat of dry air at constant pressure [J/kg/K]
	R     = 8.3144621 // universal gas constant [J/mol/K]
	Md    = 28.97     // molar mass of dry air [g/mol]
	Mw    = 18.01528  // molar mass of water [g/mol]
	Rd    = R / Md * 1.e3
	Rv    = R / Mw * 1.e3
	Kappa = Rd / Cp
	Cpv   = 1875.   // specific heat of water vapor [J/kg/K]
	Sigma = 5.67e-8 // Stefan-Boltzmann constant [W/m2/K4]
	Ps    = 1000.   // reference surface pressure [hPa]

	Cw       = 4181.3 // specific heat of liquid water [J/kg/K]
	RhoW     = 1000.  // density of liquid water [kg/m3]
	TempCtoK = 273.15
)

// BlackbodyEmission returns the emission of a blackbody
// at temperature T [W/m2].
func BlackbodyEmission(T float64) float64 {
	return Sigma * T * T * T * T
}

// ClausiusClapeyron returns the saturation vapor pressure [hPa] at
// temperature T, using the Bolton formula from Rogers and Yau (1989), p. 16.
// It is accurate to within 0.1% between -30°C and 35°C.
func ClausiusClapeyron(T float64) float64 {
	Tcel := T - TempCtoK
	return 6.112 * math.Exp(17.67*Tcel/(Tcel+243.5))
}

// PseudoAdiabat returns the rate of temperature change with pressure
// [K/hPa] along a saturated pseudoadiabat at temperature T and pressure p.
func PseudoAdiabat(T, p float64) float64 {
	esoverp := ClausiusClapeyron(T) / p
	Tcel := T - TempCtoK
	L := (2.501 - 0.00237*Tcel) * 1.e6 // latent heat of vaporization [J/kg]
	ratio := L / T / Rv
	return T / p * Kappa * (1 + esoverp*ratio) /
		(1 + Kappa*(Cpv/Rv+(ratio-1)*ratio)*esoverp)
}

// Rho returns the density of dry air [kg/m3] at temperature T
// and pressure p.
func Rho(T, p float64) float64 {
	return p * 100. / Rd / T
}

// DryLapseRate returns the dry adiabatic lapse rate g/cp [K/km].
func DryLapseRate() float64 {
	return G / Cp * 1.e3
}

// MoistLapseRate returns the pseudoadiabatic lapse rate [K/km] at
// temperature T and pressure p, converting dT/dp to dT/dz with the
// hydrostatic relation and the ideal gas density.
func MoistLapseRate(T, p float64) float64 {
	dTdp := PseudoAdiabat(T, p) / 100. // K / Pa
	return dTdp * G * Rho(T, p) * 1.e3
}
