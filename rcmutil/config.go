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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/rcm"
	"github.com/spatialmodel/rcm/science/convection/akmaev"
	"github.com/spatialmodel/rcm/science/radiation/nband"
	"github.com/spf13/cast"
)

// ColumnConfig creates a column from the "Column" section of cfg.
func ColumnConfig(cfg *viper.Viper) (*rcm.Column, error) {
	opts := []rcm.ColumnOption{
		rcm.NumLevels(cfg.GetInt("Column.NumLevels")),
		rcm.SurfacePressure(cfg.GetFloat64("Column.SurfacePressure")),
		rcm.WaterDepth(cfg.GetFloat64("Column.WaterDepth")),
		rcm.SurfaceTemperature(cfg.GetFloat64("Column.Ts")),
	}
	if !cfg.GetBool("Column.Surface") {
		opts = append(opts, rcm.NoSurface())
	}
	if tatm := cfg.Get("Column.Tatm"); !isEmpty(tatm) {
		t, err := toFloat64SliceE(tatm)
		if err != nil {
			return nil, fmt.Errorf("rcm: parsing Column.Tatm: %v", err)
		}
		opts = append(opts, rcm.Temperatures(t))
	}
	return rcm.NewColumn(opts...)
}

// ConvectionConfig creates a convective adjustment process for column c
// from the "Convection" section of cfg.
func ConvectionConfig(cfg *viper.Viper, c *rcm.Column) (*akmaev.ConvectiveAdjustment, error) {
	lr, err := akmaev.ParseLapseRate(cfg.Get("Convection.LapseRate"))
	if err != nil {
		return nil, err
	}
	return akmaev.New(c, lr)
}

// RadiationConfig creates a radiation process for column c from the
// "Radiation" section of cfg.
func RadiationConfig(cfg *viper.Viper, c *rcm.Column) (*nband.Radiation, error) {
	band, err := nband.ParseBand(cfg.GetString("Radiation.Band"))
	if err != nil {
		return nil, err
	}
	a, err := toFloat64SliceE(cfg.Get("Radiation.Absorptivity"))
	if err != nil {
		return nil, fmt.Errorf("rcm: parsing Radiation.Absorptivity: %v", err)
	}
	return nband.New(c.NumLevels(), band,
		nband.Absorptivity(a...),
		nband.AlbedoSfc(cfg.GetFloat64("Radiation.AlbedoSfc")),
		nband.FluxFromSpace(cfg.GetFloat64("Radiation.FluxFromSpace")),
		nband.FluxFromSfc(cfg.GetFloat64("Radiation.FluxFromSfc")),
		nband.SurfaceEmissivity(cfg.GetFloat64("Radiation.SurfaceEmissivity")),
		nband.Components(cfg.GetBool("Radiation.Components")),
	)
}

func isEmpty(i interface{}) bool {
	if i == nil {
		return true
	}
	s, ok := i.(string)
	return ok && strings.TrimSpace(s) == ""
}

// toFloat64SliceE casts an interface to a []float64 type. The interface
// may hold a single number, a list, or, if it was set from a command
// line argument, a number or a JSON array in a string.
func toFloat64SliceE(i interface{}) ([]float64, error) {
	switch v := i.(type) {
	case []float64:
		return v, nil
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
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var o []float64
			if err := json.Unmarshal([]byte(v), &o); err != nil {
				return nil, err
			}
			return o, nil
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		return []float64{f}, nil
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("unable to cast %#v of type %T to []float64", i, i)
		}
		return []float64{f}, nil
	}
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	switch v := cfg.Get(varName).(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, fmt.Errorf("rcm: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("rcm: invalid type for %s: %#v", varName, v)
	}
}

// checkOutputVars expands environment variables in derived output
// variables and joins multi-line expressions.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure that the directory of the output file, if
// one is specified, exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("rcm: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified but there is an output file.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" && outputFile != "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}
