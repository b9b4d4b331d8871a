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
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/ctdpack"
)

// NewLogger returns a logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "ctdpack: invalid LogLevel")
	}
	log := logrus.New()
	log.Out = w
	log.Level = lvl
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	}
	return log, nil
}

// Run converts every input file of c in sorted order and returns the
// locations of the files written. A failing file stops the run unless
// c.ContinueOnError is set, in which case the remaining files are still
// converted and an error reporting the number of failures is returned.
func Run(ctx context.Context, c *Config, log logrus.FieldLogger) ([]string, error) {
	u := new(uploader)
	defer u.cleanup()
	outDir, err := u.maybeUpload(c.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "ctdpack: creating staging directory")
	}

	opts := c.Options
	opts.Log = log
	var outputs []string
	var failed int
	inputs := c.Inputs()
	for _, path := range inputs {
		out, err := convert(ctx, path, c.Datasets[path], outDir, opts, u)
		if err != nil {
			log.WithFields(logrus.Fields{
				"file": path,
				"kind": ctdpack.KindOf(err),
			}).WithError(err).Error("conversion failed")
			if !c.ContinueOnError {
				return outputs, err
			}
			failed++
			continue
		}
		outputs = append(outputs, out...)
	}
	if failed > 0 {
		return outputs, errors.Errorf("ctdpack: %d of %d files failed", failed, len(inputs))
	}
	return outputs, nil
}

func convert(ctx context.Context, path, name, outDir string, opts ctdpack.Options, u *uploader) ([]string, error) {
	r, err := openInput(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := ctdpack.Convert(r, path, name, outDir, opts)
	if err != nil {
		return nil, err
	}
	local := []string{out}
	if opts.Stations {
		local = append(local, ctdpack.StationsName(out))
	}
	if u.dst == "" {
		return local, nil
	}
	var remote []string
	for _, f := range local {
		up, err := u.uploadOutput(ctx, f)
		if err != nil {
			return remote, &ctdpack.Error{Kind: ctdpack.WriteError, Op: "upload output", Path: f, Err: err}
		}
		remote = append(remote, up...)
	}
	return remote, nil
}
