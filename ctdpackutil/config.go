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

package ctdpackutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/pkg/errors"
	"github.com/spatialmodel/ctdpack"
	"github.com/spatialmodel/ctdpack/cloud"
	"github.com/spf13/cast"
)

// Config is the checked configuration of a conversion run.
type Config struct {
	// Datasets maps input file locations to dataset labels.
	Datasets map[string]string

	// OutputDir is the local directory or blob storage location the
	// output files are written to.
	OutputDir string

	Options ctdpack.Options

	// ContinueOnError carries on with the remaining files after a file
	// fails instead of stopping the run.
	ContinueOnError bool
}

// Inputs returns the input file locations in sorted order.
func (c *Config) Inputs() []string {
	files := make([]string, 0, len(c.Datasets))
	for f := range c.Datasets {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// LoadConfig reads the run configuration from cfg and checks it.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	datasets, err := GetStringMapString("Datasets", cfg)
	if err != nil {
		return nil, err
	}
	datasets, err = checkDatasets(datasets)
	if err != nil {
		return nil, err
	}
	outDir, err := checkOutputDir(cfg.GetString("OutputDir"))
	if err != nil {
		return nil, err
	}
	chunkSize, err := cast.ToIntE(cfg.Get("ChunkSize"))
	if err != nil {
		return nil, errors.Wrap(err, "ctdpack: invalid ChunkSize")
	}
	if chunkSize <= 0 {
		return nil, errors.Errorf("ctdpack: ChunkSize must be > 0, but is set to %d", chunkSize)
	}
	mode, err := ctdpack.ParseMode(cfg.GetString("Grouping"))
	if err != nil {
		return nil, err
	}
	loc, err := loadLocation(cfg.GetString("Timezone"))
	if err != nil {
		return nil, err
	}
	c := &Config{
		Datasets:  datasets,
		OutputDir: outDir,
		Options: ctdpack.Options{
			ChunkSize: chunkSize,
			Group: ctdpack.GroupOptions{
				Mode:             mode,
				ExcludeZeroDepth: cfg.GetBool("ExcludeZeroDepth"),
				Location:         loc,
			},
			ParentIndex: cfg.GetBool("ParentIndex"),
			RowSizes:    cfg.GetBool("RowSizes"),
			Stations:    cfg.GetBool("Stations"),
		},
		ContinueOnError: cfg.GetBool("ContinueOnError"),
	}
	return c, nil
}

// checkDatasets expands environment variables in the input locations and
// fills in missing labels with the base name of the file.
func checkDatasets(datasets map[string]string) (map[string]string, error) {
	if len(datasets) == 0 {
		return nil, errors.New("there are no input files specified. Please fill in " +
			"the Datasets configuration and try again.")
	}
	o := make(map[string]string, len(datasets))
	for k, v := range datasets {
		k = os.ExpandEnv(strings.TrimSpace(k))
		v = os.ExpandEnv(strings.TrimSpace(v))
		if v == "" {
			v = strings.TrimSuffix(filepath.Base(k), filepath.Ext(k))
		}
		o[k] = v
	}
	return o, nil
}

// checkOutputDir makes sure that the output directory is specified and
// expands any environment variables.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New(`you need to specify an output directory configuration variable (for example: OutputDir="output")`)
	}
	return os.ExpandEnv(dir), nil
}

// loadLocation returns the time zone used to compute profile timestamps.
// "Local" and "" both select the local time zone of the machine.
func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "ctdpack: invalid Timezone %q", name)
	}
	return loc, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
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
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, errors.Wrapf(err, "ctdpack: parsing %s", varName)
		}
		return o, nil
	default:
		return nil, errors.Errorf("invalid type for string map variable %s: %#v", varName, i)
	}
}

// isRemote returns whether path must be fetched rather than opened
// from the local filesystem.
func isRemote(path string) bool {
	return cloud.IsBlob(path) || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
