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

// Package rcmutil contains the command-line interface and
// configuration, logging and output handling for RCM.
package rcmutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/rcm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to RCM.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.NumLevels",
			usage: `
              Column.NumLevels is the number of evenly spaced pressure
              layers in the atmosphere.`,
			shorthand:  "n",
			defaultVal: 30,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.SurfacePressure",
			usage: `
              Column.SurfacePressure is the pressure at the bottom of the
              atmosphere [hPa].`,
			defaultVal: 1000.,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.WaterDepth",
			usage: `
              Column.WaterDepth is the depth of the slab ocean that
              sets the surface heat capacity [m].`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.Surface",
			usage: `
              Column.Surface specifies whether the column has a surface
              below the lowest atmospheric layer.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.Ts",
			usage: `
              Column.Ts is the surface temperature [K].`,
			defaultVal: 288.,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Column.Tatm",
			usage: `
              Column.Tatm is the atmospheric temperature [K] in each layer,
              starting at the top of the atmosphere. If it is empty, the
              temperature decreases linearly from 10 K below the
              surface temperature at the lowest layer to 200 K at the top.
              On the command line, use a JSON array, e.g. '[220, 250, 280]'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Convection.LapseRate",
			usage: `
              Convection.LapseRate is the critical lapse rate [K/km] for
              convective adjustment. It can be 'DALR' (dry adiabat),
              'MALR' (moist adiabat), a number, or a JSON array with one
              value for each layer plus the surface. If it is empty, no
              adjustment is made.`,
			shorthand:  "l",
			defaultVal: "DALR",
			flagsets:   []*pflag.FlagSet{adjustCmd.Flags()},
		},
		{
			name: "Convection.OutputVariables",
			usage: `
              Convection.OutputVariables specifies additional variables to
              calculate from the convective adjustment output and include in
              the output file, as a map of variable names to expressions.`,
			defaultVal: map[string]string{
				"AdjustedTatm": "Tatm + dTatm",
			},
			flagsets: []*pflag.FlagSet{adjustCmd.Flags()},
		},
		{
			name: "Radiation.Band",
			usage: `
              Radiation.Band is the spectral band: 'longwave' or 'shortwave'.`,
			shorthand:  "b",
			defaultVal: "longwave",
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.Absorptivity",
			usage: `
              Radiation.Absorptivity is the absorptivity of each layer, as
              a single value for all layers or a JSON array with one
              value for each layer.`,
			shorthand:  "a",
			defaultVal: "0",
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.AlbedoSfc",
			usage: `
              Radiation.AlbedoSfc is the fraction of the downward flux
              that the surface reflects.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.FluxFromSpace",
			usage: `
              Radiation.FluxFromSpace is the downward flux entering the
              top of the atmosphere [W/m²].`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.FluxFromSfc",
			usage: `
              Radiation.FluxFromSfc is the upward flux emitted by the
              surface [W/m²]. It is ignored in the longwave band if
              Radiation.SurfaceEmissivity is greater than zero.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.SurfaceEmissivity",
			usage: `
              Radiation.SurfaceEmissivity is the emissivity of the surface.
              If it is greater than zero, the longwave flux emitted by the
              surface is calculated from the surface temperature.`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.Components",
			usage: `
              Radiation.Components specifies whether to calculate the
              contribution of each layer to the fluxes leaving the
              atmosphere.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "Radiation.OutputVariables",
			usage: `
              Radiation.OutputVariables specifies additional variables to
              calculate from the radiative transfer output and include in
              the output file, as a map of variable names to expressions.
              The default converts the atmospheric heating rate to K/day.`,
			defaultVal: map[string]string{
				"HeatingRate": "heating_Tatm * 86400 / HeatCapacity",
			},
			flagsets: []*pflag.FlagSet{radiateCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired NetCDF output file
              location. If it is empty, no output file is written.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{adjustCmd.Flags(), radiateCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path to the desired PNG vertical profile
              plot location. If it is empty, no plot is made.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{adjustCmd.Flags(), radiateCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If it is
              empty and there is an output file, the log is saved next to
              the output file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{adjustCmd.Flags(), radiateCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RCM")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(configCmd)
	Root.AddCommand(adjustCmd)
	Root.AddCommand(radiateCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rcm: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rcm",
	Short: "A single-column radiative-convective model.",
	Long: `RCM calculates energy-conserving convective adjustment and two-stream
band radiative transfer for a single atmospheric column.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'RCM_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_'.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of RCM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("RCM v%s\n", rcm.Version)
	},
	DisableAutoGenTag: true,
}

// configCmd prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long: `config prints the configuration that results from combining the
configuration file, command-line arguments, and environment variables,
in TOML format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(Cfg.AllSettings())
	},
	DisableAutoGenTag: true,
}

// adjustCmd is a command that calculates the convective adjustment of a column.
var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Convectively adjust a column",
	Long: `adjust relaxes the column temperature profile to the critical lapse rate,
conserving the column enthalpy, and reports the resulting temperature change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ColumnConfig(Cfg)
		if err != nil {
			return err
		}
		ca, err := ConvectionConfig(Cfg, c)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		plotFile, err := checkOutputFile(Cfg.GetString("PlotFile"))
		if err != nil {
			return err
		}
		derived, err := getStringMapString("Convection.OutputVariables", Cfg)
		if err != nil {
			return err
		}
		return Adjust(cmd, checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile, plotFile, checkOutputVars(derived), c, ca)
	},
	DisableAutoGenTag: true,
}

// radiateCmd is a command that calculates radiative fluxes through a column.
var radiateCmd = &cobra.Command{
	Use:   "radiate",
	Short: "Calculate radiative heating of a column",
	Long: `radiate calculates the upward and downward radiative fluxes through the
column in a single band and the resulting heating rates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ColumnConfig(Cfg)
		if err != nil {
			return err
		}
		r, err := RadiationConfig(Cfg, c)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		plotFile, err := checkOutputFile(Cfg.GetString("PlotFile"))
		if err != nil {
			return err
		}
		derived, err := getStringMapString("Radiation.OutputVariables", Cfg)
		if err != nil {
			return err
		}
		return Radiate(cmd, checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile, plotFile, checkOutputVars(derived), c, r)
	},
	DisableAutoGenTag: true,
}
