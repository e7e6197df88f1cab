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

import (
	"strconv"

	"github.com/sophia8vm/sophia8/pkg/machine"
)

// WatchpointType selects which memory accesses a Watchpoint reacts to.
type WatchpointType uint

const (
	ReadWatch WatchpointType = iota
	WriteWatch
	ReadWriteWatch
)

type Watchpoint struct {
	Addr uint16
	Type WatchpointType
}

type Breakpoint struct {
	Addr uint16
}

// DebRecordKind mirrors the assembler's CODE/DATA tag on a parsed
// debug-map record.
type DebRecordKind string

const (
	DebCode DebRecordKind = "CODE"
	DebData DebRecordKind = "DATA"
)

// DebRecord is one parsed line of a ".deb" debug map: the byte span it
// covers in the image, the bytes themselves, and the source line that
// produced them. File is empty for the implicit entry-stub record.
type DebRecord struct {
	Addr  uint16
	Bytes []byte
	Kind  DebRecordKind
	File  string
	Line  int
	Text  string
}

func (r DebRecord) contains(addr uint16) bool {
	return addr >= r.Addr && int(addr) < int(r.Addr)+len(r.Bytes)
}

// DebMap is a parsed ".deb" debug map: the image path named in its
// header comment, plus every record in the order the writer emitted
// them (ascending address, code before data at equal addresses).
type DebMap struct {
	ImagePath string
	Records   []DebRecord
}

// Debugger is the hook surface a Machine calls after every retired
// instruction and on every memory access. Breakpoints halt the fetch
// loop by address; Watchpoints intercept memory access by address and
// direction.
type Debugger struct {
	Break bool

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint

	BinaryPath string
	Map        *DebMap

	HandleBreak func(*Debugger, *machine.Machine)
	HandleRead  func(uint16, *Debugger, *machine.Machine)
	HandleWrite func(uint16, *Debugger, *machine.Machine)
}

// --- error kinds -----------------------------------------------------

type MissingDebFileError struct {
	Path string
}

func (e *MissingDebFileError) Error() string {
	return "missing debug map: " + e.Path
}

type InvalidDebFileError struct {
	Reason string
}

func (e *InvalidDebFileError) Error() string {
	return "invalid debug map: " + e.Reason
}

type BreakpointNotFoundError struct {
	File string
	Line int
}

func (e *BreakpointNotFoundError) Error() string {
	return "breakpoint not found for " + e.File + ":" + strconv.Itoa(e.Line)
}

type NoExecutableOnLineError struct {
	File string
	Line int
}

func (e *NoExecutableOnLineError) Error() string {
	return "no executable code on line " + e.File + ":" + strconv.Itoa(e.Line)
}
