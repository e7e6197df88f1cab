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

import (
	"fmt"
	"io"
	"sort"
)

// WriteDebugMap emits the ".deb" text format: a header naming the image
// it describes, then one line per record sorted by ascending address
// (code before data at equal addresses, which overlap detection should
// make impossible in practice). The length field is printed with "%3d":
// a three-character *minimum* width, not a fixed one — a single
// ".byte"/".string" directive reserving more than 999 bytes still
// prints its full decimal length, just wider than the header's column
// alignment implies. ParseDebugMap reads it back by whitespace-splitting
// fields rather than slicing fixed columns, so a wider field parses
// the same as a three-character one.
func WriteDebugMap(w io.Writer, imagePath string, records []DebugRecord) error {
	sorted := make([]DebugRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Addr != sorted[j].Addr {
			return sorted[i].Addr < sorted[j].Addr
		}
		return sorted[i].Kind == RecordCode && sorted[j].Kind == RecordData
	})

	if _, err := fmt.Fprintf(w, "; s8asm debug map (.deb)\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "; This file is generated automatically and matches the emitted image exactly.\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "; Image: %s\n", imagePath); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "; Format: AAAA  LEN  KIND  BYTES...  file:line: original source line\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "; LEN is decimal, at least three characters wide but not capped at three.\n\n"); err != nil {
		return err
	}

	for _, r := range sorted {
		if _, err := fmt.Fprintf(w, "%04X  %3d  %s  ", r.Addr, len(r.Bytes), r.Kind); err != nil {
			return err
		}
		for i, b := range r.Bytes {
			sep := " "
			if i == len(r.Bytes)-1 {
				sep = ""
			}
			if _, err := fmt.Fprintf(w, "%02X%s", b, sep); err != nil {
				return err
			}
		}
		if r.Line == nil {
			if _, err := fmt.Fprintf(w, "  <implicit>:0: JMP <entry>\n"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s:%d: %s\n", r.Line.File, r.Line.Line, r.Line.Text); err != nil {
			return err
		}
	}

	return nil
}
