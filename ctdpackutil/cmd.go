/*
Copyright © 2024 the ctdpack authors.
This file is part of ctdpack.

ctdpack is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ctdpack is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ctdpack.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ctdpackutil contains the command-line interface to ctdpack.
package ctdpackutil

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/lnashier/viper"
	"github.com/pkg/errors"
	"github.com/spatialmodel/ctdpack"
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
	// Options are the configuration options available to ctdpack.
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
			name: "Datasets",
			usage: `
              Datasets maps the locations of the input CSV files to the labels
              of the datasets they contain. Locations can be local paths,
              http(s) URLs, or blob storage URLs (gs://, s3://, file://).
              An empty label is replaced by the base name of the file.
              Files are processed in sorted order.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir specifies the directory the NetCDF files are written
              to. It is created if it does not exist. It can also be a blob
              storage location.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ChunkSize",
			usage: `
              ChunkSize is the number of CSV rows read into memory at a time.`,
			defaultVal: ctdpack.DefaultChunkSize,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grouping",
			usage: `
              Grouping selects how rows are grouped into profiles. With 'chunk'
              every chunk is grouped on its own, so a profile whose rows straddle
              a chunk boundary is split in two. With 'file' rows are grouped over
              the whole file.`,
			defaultVal: "chunk",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ExcludeZeroDepth",
			usage: `
              ExcludeZeroDepth leaves depth readings of exactly zero out of the
              shallowest depth of each profile.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ParentIndex",
			usage: `
              ParentIndex includes the parent_index variable linking every
              observation to its profile.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RowSizes",
			usage: `
              RowSizes includes the number of observations of every profile
              as depth_row_size, press_row_size, temp_row_size and psal_row_size.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Timezone",
			usage: `
              Timezone is the IANA time zone name used to convert profile times
              to seconds since the epoch. 'Local' uses the time zone of the
              machine.`,
			defaultVal: "Local",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Stations",
			usage: `
              Stations additionally writes a point shapefile of the profile
              locations next to each NetCDF file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ContinueOnError",
			usage: `
              ContinueOnError carries on with the remaining input files when
              one fails. The command still exits with an error.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of the log messages that are
              printed (debug, info, warning or error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CTDPACK")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
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
	Root.AddCommand(runCmd)
	Root.AddCommand(inspectCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return errors.Wrap(err, "ctdpack: problem reading configuration file")
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ctdpack",
	Short: "Convert CTD cast archives to profile NetCDF files.",
	Long: `ctdpack converts archived CTD cast records from CSV into NetCDF files
with one entry per vertical profile and one entry per depth sample.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CTDPACK_var' where 'var' is the
name of the variable to be set. Input and output locations are
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ctdpack.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ctdpack v%s\n", ctdpack.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd converts the configured input files.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert the configured CSV files.",
	Long: `run reads every file listed in the Datasets configuration chunk by
chunk, groups its rows into profiles and writes one NetCDF file per input
file to OutputDir, named after the input file with a '_raw.nc' suffix.
A file with no data rows after the metadata row cannot be stored in the
NetCDF classic format and fails with a write error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := NewLogger(cmd.OutOrStderr(), Cfg.GetString("LogLevel"))
		if err != nil {
			return err
		}
		c, err := LoadConfig(Cfg)
		if err != nil {
			return err
		}
		out, err := Run(context.Background(), c, log)
		for _, f := range out {
			cmd.Println(f)
		}
		return err
	},
	DisableAutoGenTag: true,
}

// inspectCmd prints a summary of output files.
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Summarize NetCDF files written by run.",
	Long: `inspect prints the dataset label, creation date, number of profiles
and observations and the variables of each file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			s, err := inspect(path)
			if err != nil {
				return err
			}
			cmd.Printf("%s\n  dataset: %s\n  created: %s\n  profiles: %d\n  observations: %d\n  variables: %v\n",
				path, s.Name, s.Created, s.Profiles, s.Observations, s.Variables)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

func inspect(path string) (*ctdpack.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ctdpack.Error{Kind: ctdpack.IOError, Op: "open netcdf", Path: path, Err: err}
	}
	defer f.Close()
	s, err := ctdpack.ReadSummary(f)
	if err != nil {
		var e *ctdpack.Error
		if errors.As(err, &e) && e.Path == "" {
			e.Path = path
		}
		return nil, err
	}
	return s, nil
}
