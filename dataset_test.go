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
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testDataset returns a dataset with profiles K1 (depths 5 and 10) and
// K2 (depth 0).
func testDataset(t *testing.T) *Dataset {
	k1, k2 := testKey("1"), testKey("2")
	rows := []RawRow{testRaw(k1, 5), testRaw(k1, 10), testRaw(k2, 0)}
	profiles, obs, _, err := Group(rows, 0, utcOpts)
	if err != nil {
		t.Fatal(err)
	}
	return &Dataset{
		Name:        "test casts",
		Created:     time.Date(2024, 3, 5, 17, 42, 10, 0, time.UTC),
		Profiles:    profiles,
		Obs:         obs,
		Metadata:    map[string]string{ColTime: "UTC", ColDepth: "m", ColPressure: "dbar"},
		ParentIndex: true,
	}
}

func TestOutputName(t *testing.T) {
	for in, want := range map[string]string{
		"foo.csv":                   "foo_raw.nc",
		"x/y/foo.csv":               "foo_raw.nc",
		"foo":                       "foo_raw.nc",
		"a.b.csv":                   "a.b_raw.nc",
		"gs://bucket/dir/ctd.csv":   "ctd_raw.nc",
		"https://host/data/ios.csv": "ios_raw.nc",
	} {
		if got := OutputName(in, FileExt); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheck(t *testing.T) {
	d := testDataset(t)
	if err := d.Check(); err != nil {
		t.Fatal(err)
	}

	t.Run("misaligned", func(t *testing.T) {
		d := testDataset(t)
		d.Obs.Salinity = d.Obs.Salinity[:2]
		if k := KindOf(d.Check()); k != WriteError {
			t.Errorf("kind %v, want WriteError", k)
		}
	})
	t.Run("rows", func(t *testing.T) {
		d := testDataset(t)
		d.Profiles[0].Rows = 1
		if err := d.Check(); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("parent index", func(t *testing.T) {
		d := testDataset(t)
		d.Obs.ParentIndex[1] = 1
		if err := d.Check(); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("empty", func(t *testing.T) {
		d := &Dataset{Name: "empty"}
		if k := KindOf(d.Check()); k != WriteError {
			t.Errorf("kind %v, want WriteError", k)
		}
	})
}

func TestWriteFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ctdpack")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	outDir := filepath.Join(dir, "nested", "out")

	d := testDataset(t)
	out, err := WriteFile(outDir, d, "data/ctd.csv")
	if err != nil {
		t.Fatal(err)
	}
	if out != filepath.Join(outDir, "ctd_raw.nc") {
		t.Errorf("output path %s", out)
	}
	// Writing again into the existing directory replaces the file.
	if _, err := WriteFile(outDir, d, "data/ctd.csv"); err != nil {
		t.Fatal(err)
	}
	files, err := ioutil.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name() != "ctd_raw.nc" {
		for _, f := range files {
			t.Log(f.Name())
		}
		t.Errorf("unexpected directory content")
	}
}

func TestWriteFileEmpty(t *testing.T) {
	dir, err := ioutil.TempDir("", "ctdpack")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	_, err = WriteFile(dir, &Dataset{Name: "empty"}, "empty.csv")
	if k := KindOf(err); k != WriteError {
		t.Errorf("kind %v, want WriteError", k)
	}
	if _, err := os.Stat(filepath.Join(dir, "empty_raw.nc")); !os.IsNotExist(err) {
		t.Error("no output file should be written for an empty dataset")
	}
}

func TestWriteFileBadDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "ctdpack")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	blocker := filepath.Join(dir, "file")
	if err := ioutil.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err = WriteFile(filepath.Join(blocker, "out"), testDataset(t), "a.csv")
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type %T: %v", err, err)
	}
	if e.Kind != WriteError || e.Path != filepath.Join(blocker, "out") {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestObservationsAppend(t *testing.T) {
	var o Observations
	o.add(3, []RawRow{testRaw(testKey("1"), 1), testRaw(testKey("1"), 2)})
	var o2 Observations
	o2.add(4, []RawRow{testRaw(testKey("2"), 7)})
	o.Append(o2)
	if o.Len() != 3 {
		t.Fatalf("length %d", o.Len())
	}
	if s := o.At(2); s.ParentIndex != 4 || s.Depth != 7 || math.IsNaN(s.Salinity) {
		t.Errorf("sample 2: %+v", s)
	}
}
