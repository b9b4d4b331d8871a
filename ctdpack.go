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

// Package ctdpack converts archived CTD (conductivity-temperature-depth)
// cast records from CSV into profile-oriented NetCDF files.
//
// The CSV archives hold one row per depth sample. Rows are read in
// fixed-size chunks, grouped into vertical profiles by a composite key
// (platform, cruise, station, event, position and time), and written as
// a two-level dataset: one entry per profile along the "profile"
// dimension and one entry per sample along the "obs" dimension, linked
// by a parent index.
package ctdpack

// Version gives the version number.
const Version = "1.0.0"

// Column names of the archive CSV schema.
const (
	ColPlatform       = "platform_name"
	ColChiefScientist = "chief_scientist"
	ColCruiseName     = "cruise_name"
	ColCruiseNumber   = "cruise_number"
	ColStationID      = "id"
	ColEventNumber    = "event_number"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"
	ColTime           = "time"
	ColDepth          = "depth"
	ColPressure       = "PRESPR01"
	ColTemperature    = "TEMPPR01"
	ColSalinity       = "PSLTZZ01"
)

// RequiredColumns lists the columns every input file must declare.
var RequiredColumns = []string{
	ColPlatform, ColChiefScientist, ColCruiseName, ColCruiseNumber,
	ColStationID, ColEventNumber, ColLatitude, ColLongitude, ColTime,
	ColDepth, ColPressure, ColTemperature, ColSalinity,
}

// ProfileKey identifies a vertical profile. All rows with an identical
// key belong to the same cast.
type ProfileKey struct {
	Platform       string
	ChiefScientist string
	CruiseName     string
	CruiseNumber   string
	StationID      string
	EventNumber    string
	Latitude       float64 // degrees north
	Longitude      float64 // degrees east
	Time           string  // timestamp as written in the file
}

// RawRow is a single CSV record.
type RawRow struct {
	ProfileKey

	Depth       float64 // m
	Pressure    float64 // dbar
	Temperature float64 // degrees C
	Salinity    float64 // practical salinity
}

// Profile is one reconstructed vertical cast.
type Profile struct {
	Key ProfileKey

	// Index is the position of the profile in discovery order, starting
	// at zero. Observations refer to their profile by this value.
	Index int

	DateStr   string // normalized as YYYY/MM/DD HH:MM:SS
	Timestamp int64  // seconds since 1970-01-01

	ShallowestDepth float64 // NaN if no depth qualifies
	DeepestDepth    float64 // NaN if the profile has no valid depth

	// Rows is the number of observations contributed by this profile.
	Rows int
}

// Observation is a single measurement sample.
type Observation struct {
	ParentIndex int
	Depth       float64
	Pressure    float64
	Temperature float64
	Salinity    float64
}

// Observations holds measurement samples column by column. The i-th
// element of every column refers to the same sample.
type Observations struct {
	ParentIndex []int32
	Depth       []float64
	Pressure    []float64
	Temperature []float64
	Salinity    []float64
}

// Len returns the number of samples.
func (o *Observations) Len() int { return len(o.Depth) }

// At returns sample i.
func (o *Observations) At(i int) Observation {
	return Observation{
		ParentIndex: int(o.ParentIndex[i]),
		Depth:       o.Depth[i],
		Pressure:    o.Pressure[i],
		Temperature: o.Temperature[i],
		Salinity:    o.Salinity[i],
	}
}

// add appends the measurements in rows, tagging them with index.
func (o *Observations) add(index int, rows []RawRow) {
	for _, r := range rows {
		o.ParentIndex = append(o.ParentIndex, int32(index))
		o.Depth = append(o.Depth, r.Depth)
		o.Pressure = append(o.Pressure, r.Pressure)
		o.Temperature = append(o.Temperature, r.Temperature)
		o.Salinity = append(o.Salinity, r.Salinity)
	}
}

// Append adds all samples of o2 to o.
func (o *Observations) Append(o2 Observations) {
	o.ParentIndex = append(o.ParentIndex, o2.ParentIndex...)
	o.Depth = append(o.Depth, o2.Depth...)
	o.Pressure = append(o.Pressure, o2.Pressure...)
	o.Temperature = append(o.Temperature, o2.Temperature...)
	o.Salinity = append(o.Salinity, o2.Salinity...)
}
