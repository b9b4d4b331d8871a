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

package cloud

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cloud/blob"
	"github.com/pkg/errors"
)

// NewReader opens the blob at the given URL for streaming.
func NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	bucketName, key, err := SplitURL(path)
	if err != nil {
		return nil, err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrapf(err, "cloud: opening bucket for %s", path)
	}
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "cloud: reading blob %s", path)
	}
	return r, nil
}

// Upload copies the local file src to the blob at URL dst.
func Upload(ctx context.Context, src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "cloud: opening file '%s' for upload", src)
	}
	defer r.Close()
	bucketName, key, err := SplitURL(dst)
	if err != nil {
		return err
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return errors.Wrapf(err, "cloud: opening bucket to upload file '%s'", dst)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return errors.Wrapf(err, "cloud: creating writer for blob %s", dst)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return errors.Wrapf(err, "cloud: uploading file '%s' to '%s'", src, dst)
	}
	if err = w.Close(); err != nil {
		return errors.Wrapf(err, "cloud: writing blob %s", dst)
	}
	return nil
}

// Join appends name to the blob directory URL dir.
func Join(dir, name string) string {
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// ExpandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func ExpandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}
