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
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/spatialmodel/ctdpack"
	"github.com/spatialmodel/ctdpack/cloud"
)

// openInput opens the input file at path, which may be a local file, an
// http(s) URL or a blob storage location. Remote files are streamed
// rather than downloaded first.
func openInput(ctx context.Context, path string) (io.ReadCloser, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch {
	case cloud.IsBlob(path):
		r, err = cloud.NewReader(ctx, path)
	case isRemote(path):
		r, err = openHTTP(ctx, path)
	default:
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, &ctdpack.Error{Kind: ctdpack.IOError, Op: "open input", Path: path, Err: err}
	}
	return r, nil
}

func openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("downloading %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}
