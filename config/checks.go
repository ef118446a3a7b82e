// svclust: single-cell genotype clustering from pileup data.
// Copyright (c) 2024 svclust contributors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/hybridstat/svclust/blob/master/LICENSE.txt>.

package config

import (
	"fmt"
	"os"
)

// checkExists reports whether filename can be read, in the style of
// elprep's cmd/util.go checkExist: distinguishing "missing" from
// "exists but unreadable" so the error message tells the user which
// problem they have.
func checkExists(parameter, filename string) error {
	if filename == "" {
		return fmt.Errorf("config: missing %s", parameter)
	}
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if os.IsNotExist(err) {
		return fmt.Errorf("config: %s %q does not exist", parameter, filename)
	} else if os.IsPermission(err) {
		return fmt.Errorf("config: no permission to read %s %q", parameter, filename)
	} else {
		return fmt.Errorf("config: error %v accessing %s %q", err, parameter, filename)
	}
}

// checkCreatable reports whether dirname can be created and written
// into, in the style of elprep's cmd/util.go checkCreate.
func checkCreatable(parameter, dirname string) error {
	if dirname == "" {
		return fmt.Errorf("config: missing %s", parameter)
	}
	if err := os.MkdirAll(dirname, 0755); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("config: no permission to create %s %q", parameter, dirname)
		}
		return fmt.Errorf("config: error %v creating %s %q", err, parameter, dirname)
	}
	return nil
}
