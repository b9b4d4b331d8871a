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
	"encoding/csv"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// DefaultChunkSize is the default number of rows per chunk.
const DefaultChunkSize = 1000000

// Reader reads an archive CSV file in chunks of rows. The first line
// of the file is the header and the second line holds per-column
// metadata (units and time zone); data starts on the third line.
type Reader struct {
	r         *csv.Reader
	chunkSize int

	header []string
	meta   map[string]string
	col    map[string]int

	buf     []RawRow
	skipped int
	done    bool
}

// NewReader returns a Reader that reads chunks of at most chunkSize rows
// from r. The header and metadata rows are consumed immediately, so
// schema problems are reported before any data is read.
func NewReader(r io.Reader, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, errors.Errorf("ctdpack: chunk size must be > 0, got %d", chunkSize)
	}
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, newError(SchemaError, "read header", errors.New("file is empty"))
	} else if err != nil {
		return nil, readErr("read header", err)
	}
	rr := &Reader{
		r:         cr,
		chunkSize: chunkSize,
		header:    make([]string, len(header)),
		meta:      make(map[string]string),
		col:       make(map[string]int),
	}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		rr.header[i] = h
		rr.col[h] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := rr.col[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, newError(SchemaError, "read header",
			errors.Errorf("missing required columns %s", strings.Join(missing, ", ")))
	}

	meta, err := cr.Read()
	if err == io.EOF {
		rr.done = true
		return rr, nil
	} else if err != nil {
		return nil, readErr("read metadata row", err)
	}
	for i, v := range meta {
		rr.meta[rr.header[i]] = strings.TrimSpace(v)
	}
	return rr, nil
}

// OpenReader opens the file at path and returns a Reader for it along
// with the file, which the caller must close.
func OpenReader(path string, chunkSize int) (*Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		e := newError(IOError, "open input", err)
		e.Path = path
		return nil, nil, e
	}
	r, err := NewReader(f, chunkSize)
	if err != nil {
		f.Close()
		return nil, nil, withPath(err, path)
	}
	return r, f, nil
}

// Header returns the column names in file order.
func (r *Reader) Header() []string { return r.header }

// Metadata returns the metadata row keyed by column name.
func (r *Reader) Metadata() map[string]string { return r.meta }

// Skipped returns the number of rows dropped so far because one of
// their key fields was empty.
func (r *Reader) Skipped() int { return r.skipped }

// Next returns the next chunk of rows, or io.EOF when there are no more.
// A chunk spans chunkSize data records of the file; records dropped for
// an empty key count against it, so a chunk may hold fewer rows, or none.
// The returned slice is only valid until the next call to Next.
func (r *Reader) Next() ([]RawRow, error) {
	if r.done {
		return nil, io.EOF
	}
	r.buf = r.buf[:0]
	read := 0
	for ; read < r.chunkSize; read++ {
		rec, err := r.r.Read()
		if err == io.EOF {
			r.done = true
			break
		} else if err != nil {
			return nil, readErr("read row", err)
		}
		line, _ := r.r.FieldPos(0)
		row, ok, err := r.parse(rec)
		if err != nil {
			e := newError(FormatError, "parse row", err)
			e.Line = line
			return nil, e
		}
		if !ok {
			r.skipped++
			continue
		}
		r.buf = append(r.buf, row)
	}
	if read == 0 {
		return nil, io.EOF
	}
	return r.buf, nil
}

// parse converts a record. ok is false if the record lacks a key field.
func (r *Reader) parse(rec []string) (row RawRow, ok bool, err error) {
	get := func(c string) string { return strings.TrimSpace(rec[r.col[c]]) }

	k := &row.ProfileKey
	for _, f := range []struct {
		col string
		dst *string
	}{
		{ColPlatform, &k.Platform},
		{ColChiefScientist, &k.ChiefScientist},
		{ColCruiseName, &k.CruiseName},
		{ColCruiseNumber, &k.CruiseNumber},
		{ColStationID, &k.StationID},
		{ColEventNumber, &k.EventNumber},
		{ColTime, &k.Time},
	} {
		*f.dst = get(f.col)
		if *f.dst == "" {
			return row, false, nil
		}
	}
	for _, f := range []struct {
		col string
		dst *float64
	}{
		{ColLatitude, &k.Latitude},
		{ColLongitude, &k.Longitude},
	} {
		v, err := parseFloat(f.col, get(f.col))
		if err != nil {
			return row, false, err
		}
		if math.IsNaN(v) {
			return row, false, nil
		}
		*f.dst = v
	}
	for _, f := range []struct {
		col string
		dst *float64
	}{
		{ColDepth, &row.Depth},
		{ColPressure, &row.Pressure},
		{ColTemperature, &row.Temperature},
		{ColSalinity, &row.Salinity},
	} {
		if *f.dst, err = parseFloat(f.col, get(f.col)); err != nil {
			return row, false, err
		}
	}
	return row, true, nil
}

// parseFloat converts a numeric cell. Empty cells are NaN.
func parseFloat(col, s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, errors.Wrapf(err, "column %s", col)
	}
	return v, nil
}

func readErr(op string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		e := newError(FormatError, op, pe.Err)
		e.Line = pe.Line
		return e
	}
	return newError(IOError, op, err)
}
