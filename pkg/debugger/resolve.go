// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package debugger

import "path/filepath"

// Resolve searches dm for code records matching file (by exact path or,
// failing that, by basename) and line number, and returns the smallest
// matching address. If only data records match, the error is
// NoExecutableOnLineError; if nothing matches at all, it's
// BreakpointNotFoundError.
func Resolve(dm *DebMap, file string, line int) (uint16, error) {
	base := filepath.Base(file)

	var bestCode uint16
	haveCode := false
	haveAny := false

	for _, byBase := range []bool{false, true} {
		for _, r := range dm.Records {
			if r.Line != line {
				continue
			}
			if (!byBase && r.File != file) || (byBase && filepath.Base(r.File) != base) {
				continue
			}

			haveAny = true

			if r.Kind != DebCode {
				continue
			}

			if !haveCode || r.Addr < bestCode {
				bestCode = r.Addr
				haveCode = true
			}
		}
		if haveAny {
			break
		}
	}

	if haveCode {
		return bestCode, nil
	}
	if haveAny {
		return 0, &NoExecutableOnLineError{File: file, Line: line}
	}
	return 0, &BreakpointNotFoundError{File: file, Line: line}
}
