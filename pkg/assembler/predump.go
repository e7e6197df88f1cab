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

	"github.com/sophia8vm/sophia8/pkg/preprocessor"
)

// WritePreprocessedSource dumps the flattened source-line stream with
// annotation comments marking each file transition and each line's
// origin, so a diagnosis can walk straight from an image byte back to
// the exact included file and line that produced it.
func WritePreprocessedSource(w io.Writer, lines []preprocessor.SourceLine) error {
	if _, err := fmt.Fprintf(w, "; s8asm preprocessed output (all .include expanded)\n\n"); err != nil {
		return err
	}

	lastFile := ""
	for _, line := range lines {
		if line.File != lastFile {
			if _, err := fmt.Fprintf(w, "\n; ===== BEGIN FILE: %s =====\n", line.File); err != nil {
				return err
			}
			lastFile = line.File
		}
		if _, err := fmt.Fprintf(w, ";@ %s:%d\n%s\n", line.File, line.Line, line.Text); err != nil {
			return err
		}
	}
	return nil
}
