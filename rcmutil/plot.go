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
	"io"
	"math"

	"github.com/spatialmodel/rcm"
	"github.com/spatialmodel/rcm/thermo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// scaleHeight is the approximate atmospheric scale height [km]
// used to convert pressure to height for plotting.
const scaleHeight = thermo.Rd * 250. / thermo.G / 1000.

// Line is a named vertical profile. Values have one element per layer,
// with an optional extra element for the surface.
type Line struct {
	Name   string
	Values []float64
}

// height returns the approximate height [km] of pressure p [hPa] above
// the level with pressure ps.
func height(p, ps float64) float64 {
	return -scaleHeight * math.Log(p/ps)
}

// PlotProfile plots vertical profiles in column c to w in PNG format,
// with the values on the x axis and height on the y axis.
func PlotProfile(w io.Writer, c *rcm.Column, title, xLabel string, lines ...Line) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Approximate height (km)"

	pp, _, _ := c.Profile()
	ps := c.LevBounds[len(c.LevBounds)-1]
	var vs []interface{}
	for _, l := range lines {
		if len(l.Values) != c.NumLevels() && len(l.Values) != len(pp) {
			return fmt.Errorf("rcm: profile %s has %d values but column has %d levels",
				l.Name, len(l.Values), c.NumLevels())
		}
		xy := make(plotter.XYs, len(l.Values))
		for i, v := range l.Values {
			xy[i].X = v
			xy[i].Y = height(pp[i], ps)
		}
		vs = append(vs, l.Name, xy)
	}
	if err = plotutil.AddLinePoints(p, vs...); err != nil {
		return err
	}
	p.Y.Min = 0.
	ww, hh := 4.*vg.Inch, 4.*vg.Inch
	wt, err := p.WriterTo(ww, hh, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
