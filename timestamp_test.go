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
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		dateStr string
		ts      int64
	}{
		{in: "1998-07-14T03:22:00", dateStr: "1998/07/14 03:22:00", ts: 900386520},
		{in: "2019-06-02T14:05:31Z", dateStr: "2019/06/02 14:05:00", ts: 1559484300},
		{in: "2019-6-2T14:5", dateStr: "2019/06/02 14:05:00", ts: 1559484300},
		{in: "2020-02-29T00:00:00", dateStr: "2020/02/29 00:00:00", ts: 1582934400},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			dateStr, ts, err := ParseTime(test.in, time.UTC)
			if err != nil {
				t.Fatal(err)
			}
			if dateStr != test.dateStr {
				t.Errorf("date string: have %q, want %q", dateStr, test.dateStr)
			}
			if ts != test.ts {
				t.Errorf("timestamp: have %d, want %d", ts, test.ts)
			}
		})
	}
}

func TestParseTimeLocal(t *testing.T) {
	_, ts, err := ParseTime("1998-07-14T03:22:00", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(1998, 7, 14, 3, 22, 0, 0, time.Local).Unix()
	if ts != want {
		t.Errorf("have %d, want %d", ts, want)
	}

	loc := time.FixedZone("UTC-8", -8*3600)
	_, ts, err = ParseTime("1998-07-14T03:22:00", loc)
	if err != nil {
		t.Fatal(err)
	}
	if ts != 900386520+8*3600 {
		t.Errorf("fixed zone: have %d, want %d", ts, 900386520+8*3600)
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"1998/07/14 03:22",
		"1998-07-14",
		"1998-07T03:22",
		"1998-13-01T00:00",
		"1998-02-29T00:00",
		"1998-07-14T24:00",
		"1998-07-14T03:60",
		"1998-07-14T03",
		"19x8-07-14T03:22",
	} {
		_, _, err := ParseTime(in, time.UTC)
		if err == nil {
			t.Errorf("%q: expected an error", in)
			continue
		}
		if k := KindOf(err); k != FormatError {
			t.Errorf("%q: kind %v, want FormatError", in, k)
		}
	}
}
