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
	"io/ioutil"
	"strings"
	"unicode/utf8"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// WGS84 is the spatial reference of profile coordinates.
const WGS84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// stationFields are the attributes of the station shapefile. dBase
// limits field names to 10 characters.
var stationFields = []goshp.Field{
	goshp.NumberField("Index", 10),
	goshp.StringField("Platform", maxAttrLen),
	goshp.StringField("Cruise", maxAttrLen),
	goshp.StringField("Station", maxAttrLen),
	goshp.StringField("Date", 19),
	goshp.FloatField("Shallow", 14, 3),
	goshp.FloatField("Deep", 14, 3),
	goshp.NumberField("NObs", 10),
}

// maxAttrLen is the longest text attribute that is stored.
const maxAttrLen = 50

// WriteStations writes a point shapefile with one record per profile to
// path, along with a .prj file declaring WGS84 coordinates. The records
// hold the profile index, platform, cruise number, station, date,
// shallowest and deepest depth and number of observations.
func (d *Dataset) WriteStations(path string) error {
	e, err := shp.NewEncoderFromFields(path, goshp.POINT, stationFields...)
	if err != nil {
		return newError(WriteError, "create station shapefile", err)
	}
	for _, p := range d.Profiles {
		err := e.EncodeFields(geom.Point{X: p.Key.Longitude, Y: p.Key.Latitude},
			p.Index,
			clip(p.Key.Platform),
			clip(p.Key.CruiseNumber),
			clip(p.Key.StationID),
			p.DateStr,
			p.ShallowestDepth,
			p.DeepestDepth,
			p.Rows,
		)
		if err != nil {
			e.Close()
			return newError(WriteError, "write station", err)
		}
	}
	e.Close()
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if err := ioutil.WriteFile(prj, []byte(WGS84), 0644); err != nil {
		return newError(WriteError, "write station projection", err)
	}
	return nil
}

// clip shortens s to at most maxAttrLen bytes without splitting a rune.
func clip(s string) string {
	if len(s) <= maxAttrLen {
		return s
	}
	n := maxAttrLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
