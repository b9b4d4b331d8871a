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
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spatialmodel/ctdpack/cloud"
)

// uploader writes output files to a local staging directory when the
// output location is in blob storage and copies them there afterwards.
type uploader struct {
	// dst is the blob storage directory, or "" for local output.
	dst string
	dir string
}

// maybeUpload checks whether the given output directory refers to
// a blob storage location. If it does, then a temporary local directory
// is returned. Files written there are copied to blob storage by
// uploadOutput.
func (u *uploader) maybeUpload(dir string) (string, error) {
	if !cloud.IsBlob(dir) {
		return dir, nil
	}
	u.dst = dir
	if u.dir == "" {
		var err error
		if u.dir, err = ioutil.TempDir("", "ctdpack"); err != nil {
			return "", err
		}
	}
	return u.dir, nil
}

// uploadOutput copies the local output file f and, for shapefiles, its
// support files to blob storage. It returns the blob locations.
func (u *uploader) uploadOutput(ctx context.Context, f string) ([]string, error) {
	if u.dst == "" {
		return nil, nil
	}
	var o []string
	for _, src := range cloud.ExpandShp(f) {
		dst := cloud.Join(u.dst, filepath.Base(src))
		if err := cloud.Upload(ctx, src, dst); err != nil {
			return o, err
		}
		o = append(o, dst)
	}
	return o, nil
}

// cleanup removes the staging directory.
func (u *uploader) cleanup() {
	if u.dir != "" {
		os.RemoveAll(u.dir)
	}
}
