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
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures the conversion of one file.
type Options struct {
	// ChunkSize is the number of rows read at a time. Zero means
	// DefaultChunkSize.
	ChunkSize int

	Group GroupOptions

	// ParentIndex and RowSizes select the optional output variables.
	ParentIndex bool
	RowSizes    bool

	// Stations additionally writes a point shapefile of the profile
	// locations next to the NetCDF file.
	Stations bool

	// Log receives progress messages. nil discards them.
	Log logrus.FieldLogger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ChunkSize:   DefaultChunkSize,
		ParentIndex: true,
	}
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Log != nil {
		return o.Log
	}
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

// Process reads the archive CSV in r chunk by chunk, reconstructs its
// profiles and returns the assembled dataset labeled name.
func Process(r io.Reader, name string, opts Options) (*Dataset, error) {
	log := opts.logger()
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	rr, err := NewReader(r, chunkSize)
	if err != nil {
		return nil, err
	}
	g := NewGrouper(0, opts.Group)
	for chunk := 0; ; chunk++ {
		rows, err := rr.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		n, err := g.Add(rows)
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"chunk":    chunk,
			"rows":     len(rows),
			"profiles": n,
			"skipped":  rr.Skipped(),
		}).Debug("processed chunk")
	}
	if _, err := g.Flush(); err != nil {
		return nil, err
	}
	d := &Dataset{
		Name:        name,
		Created:     time.Now(),
		Profiles:    g.Profiles(),
		Obs:         g.Observations(),
		Metadata:    rr.Metadata(),
		ParentIndex: opts.ParentIndex,
		RowSizes:    opts.RowSizes,
	}
	log.WithFields(logrus.Fields{
		"profiles":     len(d.Profiles),
		"observations": d.Obs.Len(),
		"skipped":      rr.Skipped(),
	}).Info("grouped profiles")
	return d, nil
}

// ConvertFile converts the CSV file at path into a NetCDF file in outDir
// and returns the path of the output file. If opts.Stations is set, a
// shapefile of the profile locations is written as well.
func ConvertFile(path, name, outDir string, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		e := newError(IOError, "open input", err)
		e.Path = path
		return "", e
	}
	defer f.Close()
	return Convert(f, path, name, outDir, opts)
}

// Convert is like ConvertFile but reads the content of inputPath from r.
// inputPath only determines the output file name.
func Convert(r io.Reader, inputPath, name, outDir string, opts Options) (string, error) {
	log := opts.logger().WithField("file", inputPath)
	opts.Log = log
	log.Info("converting")

	d, err := Process(r, name, opts)
	if err != nil {
		return "", withPath(err, inputPath)
	}
	out, err := WriteFile(outDir, d, inputPath)
	if err != nil {
		return "", err
	}
	if opts.Stations {
		shp := StationsName(out)
		if err := d.WriteStations(shp); err != nil {
			return "", withPath(err, shp)
		}
		log.WithField("stations", shp).Info("wrote station locations")
	}
	log.WithFields(logrus.Fields{
		"output":       out,
		"profiles":     len(d.Profiles),
		"observations": d.Obs.Len(),
	}).Info("wrote dataset")
	return out, nil
}

// StationsName returns the name of the station shapefile that
// accompanies the NetCDF file out.
func StationsName(out string) string {
	return strings.TrimSuffix(out, FileExt) + "_stations.shp"
}
