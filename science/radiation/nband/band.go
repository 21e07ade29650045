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
	"fmt"
	"strings"
)

// Band is a spectral band of a radiation model.
type Band int

const (
	// Longwave is the thermal band, where each layer emits
	// as a grey body with emissivity equal to its absorptivity.
	Longwave Band = iota

	// Shortwave is the solar band, where layers absorb but do not emit.
	Shortwave
)

func (b Band) String() string {
	switch b {
	case Longwave:
		return "longwave"
	case Shortwave:
		return "shortwave"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// Emits returns whether the atmosphere and surface emit thermal
// radiation in band b.
func (b Band) Emits() bool { return b == Longwave }

// ParseBand returns the band with the given name, ignoring case.
// "lw" and "sw" are also accepted.
func ParseBand(s string) (Band, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "longwave", "lw":
		return Longwave, nil
	case "shortwave", "sw":
		return Shortwave, nil
	default:
		return 0, fmt.Errorf("nband: invalid band %q; valid options are longwave and shortwave", s)
	}
}
