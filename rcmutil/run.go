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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/rcm"
	"github.com/spatialmodel/rcm/science/convection/akmaev"
	"github.com/spatialmodel/rcm/science/radiation/nband"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to the output of cmd and,
// if logFile is not empty, to logFile. The returned function closes
// the log file.
func newLogger(cmd *cobra.Command, logFile string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{
		DisableColors:  true,
		FullTimestamp:  true,
		DisableSorting: true,
	}
	log.Out = cmd.OutOrStdout()
	if logFile == "" {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("rcm: creating log file: %v", err)
	}
	log.Out = io.MultiWriter(cmd.OutOrStdout(), f)
	return log, f.Close, nil
}

// Adjust calculates the convective adjustment of column c and logs the
// result. If outputFile or plotFile are not empty, the adjustment is
// saved in NetCDF format or plotted, respectively. derived specifies
// additional output variables as described in WriteNetCDF.
func Adjust(cmd *cobra.Command, logFile, outputFile, plotFile string, derived map[string]string, c *rcm.Column, ca *akmaev.ConvectiveAdjustment) error {
	log, closeLog, err := newLogger(cmd, logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log.WithFields(logrus.Fields{
		"levels":     c.NumLevels(),
		"surface":    c.HasSurface,
		"lapse_rate": ca.LapseRate().String(),
	}).Info("calculating convective adjustment")

	r, err := ca.Compute(c)
	if err != nil {
		return err
	}
	adj, err := c.Adjusted(r.Tendencies)
	if err != nil {
		return err
	}
	var maxChange float64
	for _, v := range r.Tendencies {
		for _, x := range v {
			maxChange = math.Max(maxChange, math.Abs(x))
		}
	}
	log.WithFields(logrus.Fields{
		"enthalpy_before": fmt.Sprintf("%.6g", enthalpyUnit(c.Enthalpy())),
		"enthalpy_after":  fmt.Sprintf("%.6g", enthalpyUnit(adj.Enthalpy())),
		"max_change":      fmt.Sprintf("%.4g", temperatureUnit(maxChange)),
	}).Info("convective adjustment complete")

	if outputFile != "" {
		if err := writeOutput(outputFile, c, r, "d", derived); err != nil {
			return err
		}
		log.WithField("file", outputFile).Info("wrote output")
	}
	if plotFile != "" {
		_, T, _ := c.Profile()
		_, Tadj, _ := adj.Profile()
		err := writePlot(plotFile, c, "Convective adjustment", "Temperature (K)",
			Line{Name: "initial", Values: T}, Line{Name: "adjusted", Values: Tadj})
		if err != nil {
			return err
		}
		log.WithField("file", plotFile).Info("wrote plot")
	}
	return nil
}

// Radiate calculates the radiative fluxes through column c and logs the
// result. If outputFile or plotFile are not empty, the fluxes are
// saved in NetCDF format or the heating rates are plotted, respectively.
func Radiate(cmd *cobra.Command, logFile, outputFile, plotFile string, derived map[string]string, c *rcm.Column, rad *nband.Radiation) error {
	log, closeLog, err := newLogger(cmd, logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log.WithFields(logrus.Fields{
		"levels":  c.NumLevels(),
		"surface": c.HasSurface,
		"band":    rad.Band().String(),
	}).Info("calculating radiative transfer")

	r, err := rad.Compute(c)
	if err != nil {
		return err
	}
	fields := make(logrus.Fields)
	for _, name := range []string{"flux_from_space", "flux_to_space", "flux_from_sfc", "flux_to_sfc", "absorbed_total", "flux_components_top_sfc"} {
		if v, ok := r.Diagnostic(name); ok {
			fields[name] = fmt.Sprintf("%.4g", fluxUnit(v))
		}
	}
	log.WithFields(fields).Info("radiative transfer complete")

	if outputFile != "" {
		if err := writeOutput(outputFile, c, r, "heating_", derived); err != nil {
			return err
		}
		log.WithField("file", outputFile).Info("wrote output")
	}
	if plotFile != "" {
		err := writePlot(plotFile, c, fmt.Sprintf("Radiative heating (%v)", rad.Band()), "Heating rate (W/m²)",
			Line{Name: "atmosphere", Values: r.Tendencies[rcm.Tatm]})
		if err != nil {
			return err
		}
		log.WithField("file", plotFile).Info("wrote plot")
	}
	return nil
}

func writeOutput(outputFile string, c *rcm.Column, r *rcm.Result, tendencyPrefix string, derived map[string]string) error {
	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("rcm: creating output file: %v", err)
	}
	if err := WriteNetCDF(w, c, r, tendencyPrefix, derived); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writePlot(plotFile string, c *rcm.Column, title, xLabel string, lines ...Line) error {
	w, err := os.Create(plotFile)
	if err != nil {
		return fmt.Errorf("rcm: creating plot file: %v", err)
	}
	if err := PlotProfile(w, c, title, xLabel, lines...); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
