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

package assembler

import "github.com/sophia8vm/sophia8/pkg/preprocessor"

// Result bundles everything one assembly run produces: the emitted
// image, the debug records that back the ".deb" writer, the symbol
// table, the entry address, and the flattened source (for the
// preprocessed-source dumper).
type Result struct {
	Image        *Image
	DebugRecords []DebugRecord
	Symbols      *SymTable
	Entry        uint16
	Source       []preprocessor.SourceLine
}

// AssembleSophia8Source runs the full pipeline against entryPath: flatten
// includes, lay out labels and items, then decode and emit. It plays the
// role the teacher's single-function AssembleLC3Source does, split into
// the distinct stages sophia8's two-pass contract requires.
func AssembleSophia8Source(entryPath string) (*Result, error) {
	lines, err := preprocessor.Expand(entryPath)
	if err != nil {
		return nil, err
	}

	sym, items, entry, err := Pass1(lines)
	if err != nil {
		return nil, err
	}

	image, records, err := Pass2(items, sym, entry)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:        image,
		DebugRecords: records,
		Symbols:      sym,
		Entry:        entry,
		Source:       lines,
	}, nil
}
