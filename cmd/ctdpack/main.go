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

// Command ctdpack is a command-line interface for converting CTD cast
// archives to profile-oriented NetCDF files.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ctdpack/ctdpackutil"
)

func main() {
	if err := ctdpackutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
