/*
Copyright © 2026 the RCM authors.
This file is part of RCM.

RCM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RCM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RCM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command rcm is a command-line interface for the RCM single-column
// radiative-convective model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/rcm/rcmutil"
)

func main() {
	if err := rcmutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
