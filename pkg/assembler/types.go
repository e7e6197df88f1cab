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

	"github.com/sophia8vm/sophia8/pkg/isa"
	"github.com/sophia8vm/sophia8/pkg/preprocessor"
)

// Position pinpoints the source line an assembler error belongs to,
// carrying enough to reproduce the diagnostics the teacher's own
// Cursor-based errors give: file, line, the untrimmed text, and the
// include chain that brought the line in.
type Position struct {
	File  string
	Line  int
	Text  string
	Chain []string
}

func positionOf(line *preprocessor.SourceLine) Position {
	return Position{File: line.File, Line: line.Line, Text: line.Text, Chain: line.Chain}
}

// SymTable binds label names to the address they resolve to. Unlike the
// teacher's SymTable (address -> source byte offset, feeding its
// gob-encoded debugger), this binds the opposite direction and has no
// on-disk format of its own; the debug map is its persisted counterpart.
type SymTable struct {
	Labels map[string]uint16
}

func NewSymTable() *SymTable {
	return &SymTable{Labels: make(map[string]uint16)}
}

// ItemKind distinguishes an instruction record from a directive record
// inside a pass-1 layout.
type ItemKind int

const (
	ItemInstruction ItemKind = iota
	ItemDirective
)

// Item is one pass-1 layout record: a reserved byte span at a fixed
// address, with enough of the original line kept around for pass 2 to
// finish decoding and for the debug map writer to describe.
type Item struct {
	Kind     ItemKind
	Name     string
	Operands []string
	Addr     uint16
	Len      uint16
	Line     *preprocessor.SourceLine
}

// DebugRecordKind is the literal "CODE" or "DATA" tag the debug map
// format requires on every record.
type DebugRecordKind string

const (
	RecordCode DebugRecordKind = "CODE"
	RecordData DebugRecordKind = "DATA"
)

// DebugRecord is one line of the eventual ".deb" debug map: a byte span
// of the final image, the bytes themselves, and (for everything but the
// implicit entry stub) the source line that produced them.
type DebugRecord struct {
	Addr  uint16
	Bytes []byte
	Kind  DebugRecordKind
	Line  *preprocessor.SourceLine // nil for the implicit entry-stub record
}

// Image is the fixed 65535-byte memory image an assembly run produces.
type Image struct {
	Bytes [isa.MemSize]byte
}

// --- error kinds -----------------------------------------------------

type DuplicateLabelError struct {
	Position Position
	Label    string
}

func (e *DuplicateLabelError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("%s:%d: duplicate label %q\n\ttext:%s", e.Position.File, e.Position.Line, e.Label, e.Position.Text)
}

type UndefinedLabelError struct {
	Position Position
	Label    string
}

func (e *UndefinedLabelError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("%s:%d: undefined label %q\n\ttext:%s", e.Position.File, e.Position.Line, e.Label, e.Position.Text)
}

type UnknownDirectiveError struct {
	Position Position
	Name     string
}

func (e *UnknownDirectiveError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *UnknownDirectiveError) Error() string {
	return fmt.Sprintf("%s:%d: unknown directive %q\n\ttext:%s", e.Position.File, e.Position.Line, e.Name, e.Position.Text)
}

type UnknownInstructionError struct {
	Position Position
	Name     string
}

func (e *UnknownInstructionError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("%s:%d: unknown instruction %q\n\ttext:%s", e.Position.File, e.Position.Line, e.Name, e.Position.Text)
}

type BadOperandCountError struct {
	Position Position
	Want     int
	Have     int
}

func (e *BadOperandCountError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadOperandCountError) Error() string {
	return fmt.Sprintf(
		"%s:%d: wrong number of operands\n\twant:%d\n\thave:%d",
		e.Position.File, e.Position.Line, e.Want, e.Have,
	)
}

type BadImmediateError struct {
	Position Position
	Operand  string
}

func (e *BadImmediateError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadImmediateError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad immediate operand %q\n\twant:#0..#255",
		e.Position.File, e.Position.Line, e.Operand,
	)
}

type BadAddressError struct {
	Position Position
	Operand  string
}

func (e *BadAddressError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadAddressError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad address operand %q\n\twant:0..65535, no leading '#'",
		e.Position.File, e.Position.Line, e.Operand,
	)
}

type BadRegisterError struct {
	Position Position
	Operand  string
}

func (e *BadRegisterError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadRegisterError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad register operand %q",
		e.Position.File, e.Position.Line, e.Operand,
	)
}

type BadByteLiteralError struct {
	Position Position
	Operand  string
}

func (e *BadByteLiteralError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadByteLiteralError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad .byte literal %q\n\twant:0..255",
		e.Position.File, e.Position.Line, e.Operand,
	)
}

type BadWordLiteralError struct {
	Position Position
	Operand  string
}

func (e *BadWordLiteralError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadWordLiteralError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad .word token %q\n\twant:0..65535 or a label",
		e.Position.File, e.Position.Line, e.Operand,
	)
}

type BadStringEscapeError struct {
	Position Position
	Escape   string
}

func (e *BadStringEscapeError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *BadStringEscapeError) Error() string {
	return fmt.Sprintf(
		"%s:%d: bad string escape %q",
		e.Position.File, e.Position.Line, e.Escape,
	)
}

type NonAsciiStringError struct {
	Position Position
	Rune     rune
}

func (e *NonAsciiStringError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *NonAsciiStringError) Error() string {
	return fmt.Sprintf(
		"%s:%d: non-ASCII character %q in string literal",
		e.Position.File, e.Position.Line, e.Rune,
	)
}

type OrgBelowReservedError struct {
	Position Position
	Addr     uint32
}

func (e *OrgBelowReservedError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *OrgBelowReservedError) Error() string {
	return fmt.Sprintf(
		"%s:%d: .org target below reserved entry stub\n\twant:>=%#04x\n\thave:%#04x",
		e.Position.File, e.Position.Line, isa.MinOrg, e.Addr,
	)
}

type DuplicateEntryMarkerError struct {
	Position Position
}

func (e *DuplicateEntryMarkerError) Location() (string, int) {
	return e.Position.File, e.Position.Line
}
func (e *DuplicateEntryMarkerError) Error() string {
	return fmt.Sprintf("%s:%d: duplicate entry marker (bare .org)", e.Position.File, e.Position.Line)
}

type MissingOrgError struct{}

func (e *MissingOrgError) Location() (string, int) { return "", 0 }
func (e *MissingOrgError) Error() string           { return "no .org directive in source" }

type OverlapError struct {
	Position Position
	Addr     uint16
}

func (e *OverlapError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *OverlapError) Error() string {
	return fmt.Sprintf(
		"%s:%d: byte at address %#04x already written\n\ttext:%s",
		e.Position.File, e.Position.Line, e.Addr, e.Position.Text,
	)
}

type OutOfRangeError struct {
	Position Position
	Addr     uint32
}

func (e *OutOfRangeError) Location() (string, int) { return e.Position.File, e.Position.Line }
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf(
		"%s:%d: item extends past the end of the address space\n\thave:%#06x",
		e.Position.File, e.Position.Line, e.Addr,
	)
}
