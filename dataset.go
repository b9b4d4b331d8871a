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

package ctdpack

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Dataset is the assembled content of one output file.
type Dataset struct {
	Name    string    // dataset label, stored as a global attribute
	Created time.Time // run time

	Profiles []Profile
	Obs      Observations

	// Metadata holds the metadata row of the input file keyed by column
	// name. It supplies the time zone of the profile dates and the units
	// of the measurement variables.
	Metadata map[string]string

	// ParentIndex includes the parent_index variable along the obs
	// dimension.
	ParentIndex bool

	// RowSizes includes per-profile observation counts
	// (depth_row_size, press_row_size, temp_row_size, psal_row_size).
	RowSizes bool
}

// Check verifies that the observation columns are aligned, that every
// profile owns exactly one contiguous block of observations and that the
// profiles are indexed in order.
func (d *Dataset) Check() error {
	o := &d.Obs
	n := len(o.Depth)
	if len(o.Pressure) != n || len(o.Temperature) != n || len(o.Salinity) != n || len(o.ParentIndex) != n {
		return newError(WriteError, "check dataset", errors.Errorf(
			"observation columns not aligned: depth=%d press=%d temp=%d psal=%d parent_index=%d",
			n, len(o.Pressure), len(o.Temperature), len(o.Salinity), len(o.ParentIndex)))
	}
	if len(d.Profiles) == 0 {
		return newError(WriteError, "check dataset", errors.New("no profiles"))
	}
	pos := 0
	for i, p := range d.Profiles {
		if p.Index != d.Profiles[0].Index+i {
			return newError(WriteError, "check dataset", errors.Errorf(
				"profile %d has index %d, want %d", i, p.Index, d.Profiles[0].Index+i))
		}
		if p.Rows <= 0 || pos+p.Rows > n {
			return newError(WriteError, "check dataset", errors.Errorf(
				"profile %d claims %d observations at offset %d of %d", p.Index, p.Rows, pos, n))
		}
		for j := pos; j < pos+p.Rows; j++ {
			if int(o.ParentIndex[j]) != p.Index {
				return newError(WriteError, "check dataset", errors.Errorf(
					"observation %d belongs to profile %d, want %d", j, o.ParentIndex[j], p.Index))
			}
		}
		pos += p.Rows
	}
	if pos != n {
		return newError(WriteError, "check dataset", errors.Errorf(
			"%d observations do not belong to any profile", n-pos))
	}
	return nil
}

// OutputName returns the output file name for inputPath: the base name
// with its extension replaced by "_raw" and ext.
func OutputName(inputPath, ext string) string {
	base := path.Base(filepath.ToSlash(inputPath))
	return strings.TrimSuffix(base, path.Ext(base)) + "_raw" + ext
}

// WriteFile writes d as a NetCDF file named after inputPath into dir,
// creating dir if needed, and returns the path of the new file. The file
// is written under a temporary name and renamed when complete, so a
// failed write never leaves a partial file under the final name.
func WriteFile(dir string, d *Dataset, inputPath string) (string, error) {
	if err := d.Check(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		e := newError(WriteError, "create output directory", err)
		e.Path = dir
		return "", e
	}
	out := filepath.Join(dir, OutputName(inputPath, FileExt))
	if err := atomicWrite(out, d.WriteNetCDF); err != nil {
		return "", withPath(err, out)
	}
	return out, nil
}

// atomicWrite calls write on a temporary file next to dst and renames
// the file to dst if write succeeds.
func atomicWrite(dst string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return newError(WriteError, "create output file", err)
	}
	tmp := f.Name()
	if err = f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmp)
		return newError(WriteError, "create output file", err)
	}
	if err = write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return newError(WriteError, "close output file", err)
	}
	if err = os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return newError(WriteError, "rename output file", err)
	}
	return nil
}
