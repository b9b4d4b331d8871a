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

package ctdpackutil

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ctdpack"
	"github.com/spatialmodel/ctdpack/cloud"
)

const testCSV = "../cmd/ctdpack/testdata/ctd_small.csv"

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "ctdpackutil")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "ctdpack v" + ctdpack.Version + "\n"; buf.String() != want {
		t.Errorf("have %q, want %q", buf.String(), want)
	}
}

func TestRunInspect(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	os.Setenv("CTDPACK_TESTOUT", dir)
	defer os.Unsetenv("CTDPACK_TESTOUT")

	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Cfg.Set("config", "../cmd/ctdpack/testdata/ctdpack.toml")
	defer Cfg.Set("config", "")
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "ctd_small_raw.nc")
	if !strings.Contains(buf.String(), out) {
		t.Errorf("output file not reported:\n%s", buf.String())
	}
	for _, f := range []string{"ctd_small_raw.nc", "ctd_small_raw_stations.shp", "ctd_small_raw_stations.prj"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Error(err)
		}
	}

	buf.Reset()
	Root.SetArgs([]string{"inspect", out})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"dataset: Line P test casts", "profiles: 3", "observations: 8", "depth_row_size"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("inspect output does not contain %q:\n%s", want, buf.String())
		}
	}
}

func TestInspectMissing(t *testing.T) {
	Root.SetOutput(ioutil.Discard)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"inspect", "testdata/missing_raw.nc"})
	err := Root.Execute()
	if k := ctdpack.KindOf(err); k != ctdpack.IOError {
		t.Errorf("kind %v, want IOError (%v)", k, err)
	}
}

func TestInspectNotNetCDF(t *testing.T) {
	_, err := inspect(testCSV)
	var e *ctdpack.Error
	if !errors.As(err, &e) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if e.Path != testCSV {
		t.Errorf("path %q, want %q", e.Path, testCSV)
	}
}

func testConfig(outDir string, datasets map[string]string) *Config {
	opts := ctdpack.DefaultOptions()
	opts.ChunkSize = 3
	return &Config{Datasets: datasets, OutputDir: outDir, Options: opts}
}

func TestRunStopOnError(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	c := testConfig(dir, map[string]string{
		"a_missing.csv": "missing",
		testCSV:         "good",
	})
	out, err := Run(context.Background(), c, testLogger())
	if k := ctdpack.KindOf(err); k != ctdpack.IOError {
		t.Errorf("kind %v, want IOError (%v)", k, err)
	}
	// Inputs are processed in sorted order, so nothing was written.
	if len(out) != 0 {
		t.Errorf("unexpected outputs %v", out)
	}
}

func TestRunContinueOnError(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	c := testConfig(dir, map[string]string{
		"a_missing.csv": "missing",
		testCSV:         "good",
	})
	c.ContinueOnError = true
	out, err := Run(context.Background(), c, testLogger())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("unexpected error %v", err)
	}
	if len(out) != 1 || out[0] != filepath.Join(dir, "ctd_small_raw.nc") {
		t.Errorf("outputs %v", out)
	}
}

func TestRunHTTP(t *testing.T) {
	srv := httptest.NewServer(http.FileServer(http.Dir("../cmd/ctdpack/testdata/")))
	defer srv.Close()
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	c := testConfig(dir, map[string]string{srv.URL + "/ctd_small.csv": "remote"})
	out, err := Run(context.Background(), c, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("outputs %v", out)
	}
	f, err := os.Open(out[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s, err := ctdpack.ReadSummary(f)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "remote" || s.Observations != 8 {
		t.Errorf("summary %+v", s)
	}

	c = testConfig(dir, map[string]string{srv.URL + "/none.csv": "remote"})
	if _, err := Run(context.Background(), c, testLogger()); ctdpack.KindOf(err) != ctdpack.IOError {
		t.Errorf("missing remote file: %v", err)
	}
}

func TestRunBlobOutput(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	abs, err := filepath.Abs(testCSV)
	if err != nil {
		t.Fatal(err)
	}

	c := testConfig("file://"+dir, map[string]string{"file://" + abs: "blob"})
	c.Options.Stations = true
	ctx := context.Background()
	out, err := Run(ctx, c, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	// The NetCDF file plus the four shapefile components.
	if len(out) != 5 {
		t.Fatalf("outputs %v", out)
	}
	if want := "file://" + dir + "/ctd_small_raw.nc"; out[0] != want {
		t.Errorf("output %s, want %s", out[0], want)
	}
	r, err := cloud.NewReader(ctx, out[0])
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	b, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("CDF")) {
		t.Errorf("uploaded file is not NetCDF")
	}
}

func TestRunNoDataRows(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "empty.csv")
	header := "platform_name,chief_scientist,cruise_name,cruise_number,id,event_number,latitude,longitude,time,depth,PRESPR01,TEMPPR01,PSLTZZ01\n" +
		",,,,,,degrees_north,degrees_east,UTC,m,dbar,degC,PSS-78\n"
	if err := ioutil.WriteFile(in, []byte(header), 0644); err != nil {
		t.Fatal(err)
	}
	c := testConfig(filepath.Join(dir, "out"), map[string]string{in: "empty"})
	if _, err := Run(context.Background(), c, testLogger()); ctdpack.KindOf(err) != ctdpack.WriteError {
		t.Errorf("kind %v, want WriteError (%v)", ctdpack.KindOf(err), err)
	}
	if !strings.Contains(runCmd.Long, "no data rows") {
		t.Errorf("run help does not describe files without data rows:\n%s", runCmd.Long)
	}
}
