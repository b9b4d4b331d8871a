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
	"math"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/pkg/errors"
)

// FileExt is the extension of output files.
const FileExt = ".nc"

// Dimension names.
const (
	ProfileDim = "profile"
	ObsDim     = "obs"
)

// CreationDateFormat is the layout of the creation_date attribute.
const CreationDateFormat = "2006-01-02 15:04"

type stringVar struct {
	name   string
	values []string
}

type floatVar struct {
	name, dim, desc, units string
	values                 []float64
	fill                   bool
}

type intVar struct {
	name, dim, desc string
	values          []int32
}

// WriteNetCDF writes d to w in NetCDF classic format. Profile-level
// variables use the "profile" dimension and measurements the "obs"
// dimension; text variables are stored as character arrays with one
// extra dimension each.
func (d *Dataset) WriteNetCDF(w *os.File) error {
	if err := d.Check(); err != nil {
		return err
	}
	np, no := len(d.Profiles), d.Obs.Len()

	strs := d.stringVars()
	floatVars := d.floatVars()
	intVars := d.intVars()

	dims := []string{ProfileDim, ObsDim}
	lengths := []int{np, no}
	for _, s := range strs {
		dims = append(dims, s.name+"_strlen")
		lengths = append(lengths, maxLen(s.values))
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "dataset_name", d.Name)
	h.AddAttribute("", "creation_date", d.Created.Format(CreationDateFormat))
	h.AddAttribute("", "featureType", "profile")
	h.AddAttribute("", "source", "ctdpack v"+Version)

	for _, v := range floatVars {
		h.AddVariable(v.name, []string{v.dim}, []float64{0})
		h.AddAttribute(v.name, "description", v.desc)
		if v.units != "" {
			h.AddAttribute(v.name, "units", v.units)
		}
		if v.fill {
			h.AddAttribute(v.name, "_FillValue", []float64{math.NaN()})
		}
	}
	for _, v := range strs {
		h.AddVariable(v.name, []string{ProfileDim, v.name + "_strlen"}, "")
	}
	if tz := d.Metadata[ColTime]; tz != "" {
		h.AddAttribute("datestr", "timezone", tz)
	}
	for _, v := range intVars {
		h.AddVariable(v.name, []string{v.dim}, []int32{0})
		h.AddAttribute(v.name, "description", v.desc)
	}
	if d.ParentIndex {
		h.AddAttribute("parent_index", "instance_dimension", ProfileDim)
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return newError(WriteError, "define netcdf header", errs[0])
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return newError(WriteError, "write netcdf header", err)
	}
	for _, v := range floatVars {
		if err := writeVar(f, v.name, v.values); err != nil {
			return err
		}
	}
	for _, v := range strs {
		// Character arrays are not a multiple of 4 bytes long, so write the
		// padding as well.
		if err := f.Fill(v.name); err != nil {
			return newError(WriteError, "write netcdf variable "+v.name, err)
		}
		if err := writeVar(f, v.name, packStrings(v.values, maxLen(v.values))); err != nil {
			return err
		}
	}
	for _, v := range intVars {
		if err := writeVar(f, v.name, v.values); err != nil {
			return err
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return newError(WriteError, "update netcdf record count", err)
	}
	return nil
}

func (d *Dataset) stringVars() []stringVar {
	n := len(d.Profiles)
	vars := []stringVar{
		{name: "platform"}, {name: "chief_scientist"}, {name: "cruise_name"},
		{name: "orig_cruise_id"}, {name: "orig_profile_id"}, {name: "datestr"},
	}
	for i := range vars {
		vars[i].values = make([]string, n)
	}
	for i, p := range d.Profiles {
		vars[0].values[i] = p.Key.Platform
		vars[1].values[i] = p.Key.ChiefScientist
		vars[2].values[i] = p.Key.CruiseName
		vars[3].values[i] = p.Key.CruiseNumber
		vars[4].values[i] = p.Key.StationID
		vars[5].values[i] = p.DateStr
	}
	return vars
}

func (d *Dataset) floatVars() []floatVar {
	n := len(d.Profiles)
	ts, lat, lon := make([]float64, n), make([]float64, n), make([]float64, n)
	shallow, deep := make([]float64, n), make([]float64, n)
	for i, p := range d.Profiles {
		ts[i] = float64(p.Timestamp)
		lat[i] = p.Key.Latitude
		lon[i] = p.Key.Longitude
		shallow[i] = p.ShallowestDepth
		deep[i] = p.DeepestDepth
	}
	depthUnits := d.Metadata[ColDepth]
	return []floatVar{
		{name: "timestamp", dim: ProfileDim, desc: "Profile time", units: "seconds since 1970-01-01 00:00:00", values: ts},
		{name: "lat", dim: ProfileDim, desc: "Latitude", units: d.Metadata[ColLatitude], values: lat},
		{name: "lon", dim: ProfileDim, desc: "Longitude", units: d.Metadata[ColLongitude], values: lon},
		{name: "shallowest_depth", dim: ProfileDim, desc: "Shallowest depth of the profile", units: depthUnits, values: shallow, fill: true},
		{name: "deepest_depth", dim: ProfileDim, desc: "Deepest depth of the profile", units: depthUnits, values: deep, fill: true},
		{name: "depth", dim: ObsDim, desc: "Sample depth", units: depthUnits, values: d.Obs.Depth, fill: true},
		{name: "press", dim: ObsDim, desc: "Sea pressure", units: d.Metadata[ColPressure], values: d.Obs.Pressure, fill: true},
		{name: "temp", dim: ObsDim, desc: "Sea water temperature", units: d.Metadata[ColTemperature], values: d.Obs.Temperature, fill: true},
		{name: "psal", dim: ObsDim, desc: "Practical salinity", units: d.Metadata[ColSalinity], values: d.Obs.Salinity, fill: true},
	}
}

func (d *Dataset) intVars() []intVar {
	var vars []intVar
	if d.RowSizes {
		rows := make([]int32, len(d.Profiles))
		for i, p := range d.Profiles {
			rows[i] = int32(p.Rows)
		}
		for _, name := range []string{"depth", "press", "temp", "psal"} {
			vars = append(vars, intVar{
				name:   name + "_row_size",
				dim:    ProfileDim,
				desc:   "Number of " + name + " samples in the profile",
				values: rows,
			})
		}
	}
	if d.ParentIndex {
		vars = append(vars, intVar{
			name:   "parent_index",
			dim:    ObsDim,
			desc:   "Index of the profile the sample belongs to",
			values: d.Obs.ParentIndex,
		})
	}
	return vars
}

// writeVar writes all of data to variable v.
func writeVar(f *cdf.File, v string, data interface{}) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	if _, err := w.Write(data); err != nil {
		return newError(WriteError, "write netcdf variable "+v, err)
	}
	return nil
}

// packStrings lays out s as a zero-padded n-by-width character array.
func packStrings(s []string, width int) []byte {
	b := make([]byte, len(s)*width)
	for i, v := range s {
		copy(b[i*width:], v)
	}
	return b
}

// maxLen returns the length of the longest string, at least 1.
func maxLen(s []string) int {
	n := 1
	for _, v := range s {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}

// Summary describes the content of an output file.
type Summary struct {
	Name         string
	Created      string
	Profiles     int
	Observations int

	// RowsPerProfile holds the number of observations per profile index,
	// derived from parent_index. It is nil if the file has no
	// parent_index variable.
	RowsPerProfile []int

	Variables []string
}

// ReadSummary reads back the dimensions, global attributes and
// parent-index partition of a file written by WriteNetCDF.
func ReadSummary(rw cdf.ReaderWriterAt) (*Summary, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, newError(IOError, "open netcdf", err)
	}
	s := &Summary{
		Profiles:     lengthOf(f, "lat"),
		Observations: lengthOf(f, "depth"),
		Variables:    f.Header.Variables(),
	}
	sort.Strings(s.Variables)
	if v, ok := f.Header.GetAttribute("", "dataset_name").(string); ok {
		s.Name = v
	}
	if v, ok := f.Header.GetAttribute("", "creation_date").(string); ok {
		s.Created = v
	}

	for _, v := range s.Variables {
		if v != "parent_index" {
			continue
		}
		r := f.Reader(v, nil, nil)
		buf, ok := r.Zero(-1).([]int32)
		if !ok {
			return nil, newError(FormatError, "read parent_index", errors.New("parent_index is not an integer variable"))
		}
		if _, err := r.Read(buf); err != nil {
			return nil, newError(IOError, "read parent_index", err)
		}
		s.RowsPerProfile = make([]int, s.Profiles)
		for i, p := range buf {
			if p < 0 || int(p) >= s.Profiles {
				return nil, newError(FormatError, "read parent_index", errors.Errorf(
					"observation %d refers to profile %d of %d", i, p, s.Profiles))
			}
			s.RowsPerProfile[p]++
		}
	}
	return s, nil
}

func lengthOf(f *cdf.File, v string) int {
	l := f.Header.Lengths(v)
	if len(l) == 0 {
		return 0
	}
	return l[0]
}
