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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateFormat is the layout of normalized profile date strings.
const DateFormat = "2006/01/02 15:04:05"

// ParseTime parses an archive timestamp of the form
// YYYY-MM-DDTHH:MM[...] and returns the normalized date string and the
// number of seconds since the Unix epoch of that calendar moment in loc.
// Anything after the minutes, including seconds and zone designators, is
// ignored, so seconds are always zero. A nil loc means time.Local.
func ParseTime(s string, loc *time.Location) (string, int64, error) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.SplitN(s, "T", 2)
	if len(parts) != 2 {
		return "", 0, formatErr(s, "missing 'T' date/time separator")
	}
	date := strings.Split(parts[0], "-")
	if len(date) != 3 {
		return "", 0, formatErr(s, "date is not YYYY-MM-DD")
	}
	clock := strings.Split(parts[1], ":")
	if len(clock) < 2 {
		return "", 0, formatErr(s, "time is not HH:MM")
	}

	var v [5]int
	for i, f := range []string{date[0], date[1], date[2], clock[0], clock[1]} {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return "", 0, formatErr(s, "non-numeric component "+strconv.Quote(f))
		}
		v[i] = n
	}
	year, month, day, hour, minute := v[0], v[1], v[2], v[3], v[4]
	switch {
	case month < 1 || month > 12:
		return "", 0, formatErr(s, "month out of range")
	case day < 1 || day > daysIn(time.Month(month), year):
		return "", 0, formatErr(s, "day out of range")
	case hour < 0 || hour > 23:
		return "", 0, formatErr(s, "hour out of range")
	case minute < 0 || minute > 59:
		return "", 0, formatErr(s, "minute out of range")
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	return t.Format(DateFormat), t.Unix(), nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func formatErr(s, reason string) error {
	return newError(FormatError, "parse timestamp",
		errors.Errorf("%q: %s", s, reason))
}
