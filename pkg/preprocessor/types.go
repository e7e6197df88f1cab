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

package preprocessor

import (
	"fmt"
	"strings"
)

// SourceLine is one line of flattened, post-include source text: the
// canonical file it came from, its 1-based line number in that file, its
// untrimmed text, and the chain of canonical paths (entry file first) that
// led to it being included.
type SourceLine struct {
	File  string
	Line  int
	Text  string
	Chain []string
}

// SourceError is implemented by every error the preprocessor and assembler
// produce; it exposes enough to point a reader at the offending line
// without callers needing to know the concrete error type.
type SourceError interface {
	error
	Location() (file string, line int)
}

// FileNotFoundError reports a ".include" target, or the entry file itself,
// that could not be opened.
type FileNotFoundError struct {
	File string
	Line int
	Path string
}

func (err *FileNotFoundError) Location() (string, int) { return err.File, err.Line }

func (err *FileNotFoundError) Error() string {
	if err.File == "" {
		return fmt.Sprintf("file not found\n\tpath:%s", err.Path)
	}
	return fmt.Sprintf("%s:%d: include target not found\n\tpath:%s", err.File, err.Line, err.Path)
}

// ReadError reports an I/O failure while scanning a file.
type ReadError struct {
	Path string
	Err  error
}

func (err *ReadError) Location() (string, int) { return err.Path, 0 }

func (err *ReadError) Error() string {
	return fmt.Sprintf("%s: read error\n\terr:%s", err.Path, err.Err)
}

// InvalidIncludeSyntaxError reports a ".include" line with a missing or
// mismatched quote pair.
type InvalidIncludeSyntaxError struct {
	File string
	Line int
	Text string
}

func (err *InvalidIncludeSyntaxError) Location() (string, int) { return err.File, err.Line }

func (err *InvalidIncludeSyntaxError) Error() string {
	return fmt.Sprintf(
		"%s:%d: invalid .include syntax\n\thave:%s",
		err.File, err.Line, err.Text,
	)
}

// IncludeCycleError reports a file that, directly or transitively,
// includes itself. Chain is ordered entry-file-first with the repeated
// path last, e.g. ["a.s8", "b.s8", "a.s8"].
type IncludeCycleError struct {
	File  string
	Line  int
	Chain []string
}

func (err *IncludeCycleError) Location() (string, int) { return err.File, err.Line }

func (err *IncludeCycleError) Error() string {
	return fmt.Sprintf(
		"%s:%d: include cycle detected\n\tchain:%s",
		err.File, err.Line, strings.Join(err.Chain, " -> "),
	)
}

// MultipleInclusionError reports a file being included a second time, even
// without forming a cycle.
type MultipleInclusionError struct {
	File string
	Line int
	Path string
}

func (err *MultipleInclusionError) Location() (string, int) { return err.File, err.Line }

func (err *MultipleInclusionError) Error() string {
	return fmt.Sprintf(
		"%s:%d: file already included\n\tpath:%s",
		err.File, err.Line, err.Path,
	)
}
