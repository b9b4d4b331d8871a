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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gonum/floats"
	"github.com/pkg/errors"
)

// Mode specifies how rows are grouped across chunks.
type Mode int

const (
	// PerChunk groups every chunk in isolation. A profile whose rows
	// straddle a chunk boundary is emitted as two profiles.
	PerChunk Mode = iota

	// WholeFile accumulates rows by key until the end of the file, so a
	// profile is emitted once no matter where its rows are.
	WholeFile
)

func (m Mode) String() string {
	switch m {
	case PerChunk:
		return "chunk"
	case WholeFile:
		return "file"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode parses "chunk" or "file".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chunk", "perchunk", "":
		return PerChunk, nil
	case "file", "wholefile":
		return WholeFile, nil
	}
	return PerChunk, errors.Errorf("ctdpack: invalid grouping mode %q; use 'chunk' or 'file'", s)
}

// GroupOptions controls profile reconstruction.
type GroupOptions struct {
	Mode Mode

	// ExcludeZeroDepth leaves depth readings of exactly zero out of the
	// shallowest depth.
	ExcludeZeroDepth bool

	// Location is used to convert profile times to epoch seconds.
	// nil means time.Local.
	Location *time.Location
}

// Group groups rows by ProfileKey and returns one profile per distinct
// key, ordered by key, with indices starting at next. It also returns the
// observations of those profiles, stored contiguously per profile in
// input order, and the next unused index.
func Group(rows []RawRow, next int, opts GroupOptions) ([]Profile, Observations, int, error) {
	var obs Observations
	profiles, next, err := group(rows, next, opts, &obs)
	return profiles, obs, next, err
}

func group(rows []RawRow, next int, opts GroupOptions, obs *Observations) ([]Profile, int, error) {
	members := make(map[ProfileKey][]int)
	var keys []ProfileKey
	for i := range rows {
		k := rows[i].ProfileKey
		if _, ok := members[k]; !ok {
			keys = append(keys, k)
		}
		members[k] = append(members[k], i)
	}
	sortKeys(keys)

	profiles := make([]Profile, 0, len(keys))
	depth := make([]float64, 0, 64)
	for _, k := range keys {
		depth = depth[:0]
		for _, i := range members[k] {
			depth = append(depth, rows[i].Depth)
			obs.ParentIndex = append(obs.ParentIndex, int32(next))
			obs.Depth = append(obs.Depth, rows[i].Depth)
			obs.Pressure = append(obs.Pressure, rows[i].Pressure)
			obs.Temperature = append(obs.Temperature, rows[i].Temperature)
			obs.Salinity = append(obs.Salinity, rows[i].Salinity)
		}
		p, err := newProfile(k, next, depth, opts)
		if err != nil {
			return nil, next, err
		}
		profiles = append(profiles, p)
		next++
	}
	return profiles, next, nil
}

// newProfile derives the summary attributes of the profile with key k
// from its depth readings.
func newProfile(k ProfileKey, index int, depth []float64, opts GroupOptions) (Profile, error) {
	date, ts, err := ParseTime(k.Time, opts.Location)
	if err != nil {
		return Profile{}, err
	}
	shallow, deep := depthRange(depth, opts.ExcludeZeroDepth)
	return Profile{
		Key:             k,
		Index:           index,
		DateStr:         date,
		Timestamp:       ts,
		ShallowestDepth: shallow,
		DeepestDepth:    deep,
		Rows:            len(depth),
	}, nil
}

// depthRange returns the shallowest and deepest of the valid (non-NaN)
// depths, NaN where no value qualifies.
func depthRange(depth []float64, excludeZero bool) (shallow, deep float64) {
	valid := make([]float64, 0, len(depth))
	for _, d := range depth {
		if !math.IsNaN(d) {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return math.NaN(), math.NaN()
	}
	deep = floats.Max(valid)
	if !excludeZero {
		return floats.Min(valid), deep
	}
	nonzero := valid[:0]
	for _, d := range valid {
		if d != 0 {
			nonzero = append(nonzero, d)
		}
	}
	if len(nonzero) == 0 {
		return math.NaN(), deep
	}
	return floats.Min(nonzero), deep
}

// Grouper reconstructs profiles from the chunks of one file and keeps
// the accumulated result.
type Grouper struct {
	opts GroupOptions
	next int

	profiles []Profile
	obs      Observations

	// WholeFile mode only.
	pending map[ProfileKey]*Observations
	order   []ProfileKey
}

// NewGrouper returns a Grouper whose first profile gets index next.
func NewGrouper(next int, opts GroupOptions) *Grouper {
	g := &Grouper{opts: opts, next: next}
	if opts.Mode == WholeFile {
		g.pending = make(map[ProfileKey]*Observations)
	}
	return g
}

// Add processes a chunk of rows and returns the number of profiles it
// completed. In WholeFile mode no profile is complete before Flush.
// rows is not retained.
func (g *Grouper) Add(rows []RawRow) (int, error) {
	if g.opts.Mode == WholeFile {
		for i := range rows {
			k := rows[i].ProfileKey
			acc, ok := g.pending[k]
			if !ok {
				acc = new(Observations)
				g.pending[k] = acc
				g.order = append(g.order, k)
			}
			acc.add(0, rows[i:i+1])
		}
		return 0, nil
	}
	p, next, err := group(rows, g.next, g.opts, &g.obs)
	if err != nil {
		return 0, err
	}
	g.profiles = append(g.profiles, p...)
	g.next = next
	return len(p), nil
}

// Flush emits the profiles held back in WholeFile mode, in key order,
// and returns how many there were. It is a no-op in PerChunk mode.
func (g *Grouper) Flush() (int, error) {
	if g.opts.Mode != WholeFile {
		return 0, nil
	}
	keys := g.order
	sortKeys(keys)
	for _, k := range keys {
		acc := g.pending[k]
		p, err := newProfile(k, g.next, acc.Depth, g.opts)
		if err != nil {
			return 0, err
		}
		for i := range acc.ParentIndex {
			acc.ParentIndex[i] = int32(g.next)
		}
		g.obs.Append(*acc)
		g.profiles = append(g.profiles, p)
		delete(g.pending, k)
		g.next++
	}
	g.order = nil
	return len(keys), nil
}

// Profiles returns the profiles emitted so far.
func (g *Grouper) Profiles() []Profile { return g.profiles }

// Observations returns the observations emitted so far.
func (g *Grouper) Observations() Observations { return g.obs }

// Next returns the next unused profile index.
func (g *Grouper) Next() int { return g.next }

func sortKeys(keys []ProfileKey) {
	sort.Slice(keys, func(i, j int) bool { return compareKeys(&keys[i], &keys[j]) < 0 })
}

// compareKeys orders keys field by field. Identifier fields that hold
// numbers compare numerically.
func compareKeys(a, b *ProfileKey) int {
	if c := strings.Compare(a.Platform, b.Platform); c != 0 {
		return c
	}
	if c := strings.Compare(a.ChiefScientist, b.ChiefScientist); c != 0 {
		return c
	}
	if c := strings.Compare(a.CruiseName, b.CruiseName); c != 0 {
		return c
	}
	if c := compareIDs(a.CruiseNumber, b.CruiseNumber); c != 0 {
		return c
	}
	if c := compareIDs(a.StationID, b.StationID); c != 0 {
		return c
	}
	if c := compareIDs(a.EventNumber, b.EventNumber); c != 0 {
		return c
	}
	if c := compareFloats(a.Latitude, b.Latitude); c != 0 {
		return c
	}
	if c := compareFloats(a.Longitude, b.Longitude); c != 0 {
		return c
	}
	return strings.Compare(a.Time, b.Time)
}

// compareIDs compares numerically if both values are numbers. Numbers
// sort before text.
func compareIDs(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if c := compareFloats(fa, fb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
