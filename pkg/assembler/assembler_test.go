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

package assembler_test

import (
	"strings"
	"testing"

	"github.com/sophia8vm/sophia8/pkg/assembler"
	"github.com/sophia8vm/sophia8/pkg/isa"
	"github.com/sophia8vm/sophia8/pkg/preprocessor"
)

func srcLines(src string) []preprocessor.SourceLine {
	rawLines := strings.Split(src, "\n")
	out := make([]preprocessor.SourceLine, 0, len(rawLines))
	for i, text := range rawLines {
		if i == len(rawLines)-1 && text == "" {
			continue
		}
		out = append(out, preprocessor.SourceLine{
			File: "test.s8", Line: i + 1, Text: text, Chain: []string{"test.s8"},
		})
	}
	return out
}

func assemble(t *testing.T, src string) *assembler.Image {
	t.Helper()

	sym, items, entry, err := assembler.Pass1(srcLines(src))
	if err != nil {
		t.Fatalf("Pass1: unexpected error: %s", err)
	}

	image, _, err := assembler.Pass2(items, sym, entry)
	if err != nil {
		t.Fatalf("Pass2: unexpected error: %s", err)
	}

	return image
}

func TestImageIsExactly65535Bytes(t *testing.T) {
	image := assemble(t, ".org 0x0003\nHALT\n")
	if size := len(image.Bytes); size != 65535 {
		t.Fatalf("Invalid image length\n\twant:65535\n\thave:%d", size)
	}
}

func TestEntryStubJumpsToFirstNumericOrg(t *testing.T) {
	image := assemble(t, ".org 0x0003\nHALT\n")

	want := []byte{byte(isa.JMP), 0x00, 0x03}
	have := image.Bytes[0:3]
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("Entry stub mismatch\n\twant:%v\n\thave:%v", want, have)
		}
	}
}

func TestEntryMarkerTakesPriorityOverNumericOrg(t *testing.T) {
	image := assemble(t, ".org 0x0003\nHALT\nentry:\n.org\nSET #1,R0\n")

	// entry: label lands right after HALT, at 0x0004
	want := []byte{byte(isa.JMP), 0x00, 0x04}
	have := image.Bytes[0:3]
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("Entry stub mismatch\n\twant:%v\n\thave:%v", want, have)
		}
	}
}

func TestSetInstructionEncoding(t *testing.T) {
	image := assemble(t, ".org 0x0003\nSET #5,R0\nHALT\n")

	want := []byte{byte(isa.SET), 5, byte(isa.RegR0)}
	have := image.Bytes[3:6]
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("SET encoding mismatch\n\twant:%v\n\thave:%v", want, have)
		}
	}
}

func TestJumpByLabelIsByteExact(t *testing.T) {
	image := assemble(t, ".org 0x0003\nJMP target\ntarget:\nHALT\n")

	want := []byte{byte(isa.JMP), 0x00, 0x06}
	have := image.Bytes[3:6]
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("JMP encoding mismatch\n\twant:%v\n\thave:%v", want, have)
		}
	}
	if image.Bytes[6] != byte(isa.HALT) {
		t.Fatalf("HALT not placed at expected address 0x0006")
	}
}

func TestByteWordStringDirectives(t *testing.T) {
	image := assemble(t, ".org 0x0003\ndata:\n.byte 1, 2, 3\nwords:\n.word 0x0102, data\nstr:\n.string \"hi\"\nHALT\n")

	wantByte := []byte{1, 2, 3}
	if got := image.Bytes[3:6]; string(got) != string(wantByte) {
		t.Fatalf(".byte mismatch\n\twant:%v\n\thave:%v", wantByte, got)
	}

	wantWord := []byte{0x01, 0x02, 0x00, 0x03}
	if got := image.Bytes[6:10]; string(got) != string(wantWord) {
		t.Fatalf(".word mismatch\n\twant:%v\n\thave:%v", wantWord, got)
	}

	wantStr := []byte{'h', 'i', 0}
	if got := image.Bytes[10:13]; string(got) != string(wantStr) {
		t.Fatalf(".string mismatch\n\twant:%v\n\thave:%v", wantStr, got)
	}
}

func TestDuplicateLabelIsFatal(t *testing.T) {
	_, _, _, err := assembler.Pass1(srcLines(".org 0x0003\na: HALT\na: HALT\n"))
	if err == nil {
		t.Fatal("want DuplicateLabelError, have nil")
	}
	if _, ok := err.(*assembler.DuplicateLabelError); !ok {
		t.Fatalf("want *DuplicateLabelError, have %T", err)
	}
}

func TestMissingOrgIsFatal(t *testing.T) {
	_, _, _, err := assembler.Pass1(srcLines("HALT\n"))
	if err == nil {
		t.Fatal("want MissingOrgError, have nil")
	}
	if _, ok := err.(*assembler.MissingOrgError); !ok {
		t.Fatalf("want *MissingOrgError, have %T", err)
	}
}

func TestUndefinedLabelIsFatal(t *testing.T) {
	sym, items, entry, err := assembler.Pass1(srcLines(".org 0x0003\nJMP nowhere\n"))
	if err != nil {
		t.Fatalf("Pass1: unexpected error: %s", err)
	}

	_, _, err = assembler.Pass2(items, sym, entry)
	if err == nil {
		t.Fatal("want UndefinedLabelError, have nil")
	}
	if _, ok := err.(*assembler.UndefinedLabelError); !ok {
		t.Fatalf("want *UndefinedLabelError, have %T", err)
	}
}

func TestOverlapIsFatal(t *testing.T) {
	sym, items, entry, err := assembler.Pass1(srcLines(".org 0x0003\nSET #1,R0\n.org 0x0003\nHALT\n"))
	if err != nil {
		t.Fatalf("Pass1: unexpected error: %s", err)
	}

	_, _, err = assembler.Pass2(items, sym, entry)
	if err == nil {
		t.Fatal("want OverlapError, have nil")
	}
	if _, ok := err.(*assembler.OverlapError); !ok {
		t.Fatalf("want *OverlapError, have %T", err)
	}
}

func TestReassemblyIsDeterministic(t *testing.T) {
	src := ".org 0x0003\nSET #9,R1\nADD #1,R1\nHALT\n"

	first := assemble(t, src)
	second := assemble(t, src)

	if string(first.Bytes[:]) != string(second.Bytes[:]) {
		t.Fatal("re-assembling identical source produced different images")
	}
}

func TestBadOperandCount(t *testing.T) {
	_, _, _, err := assembler.Pass1(srcLines(".org 0x0003\nSET #1\n"))
	if err == nil {
		t.Fatal("want BadOperandCountError, have nil")
	}
	if _, ok := err.(*assembler.BadOperandCountError); !ok {
		t.Fatalf("want *BadOperandCountError, have %T", err)
	}
}

func TestUnknownInstruction(t *testing.T) {
	_, _, _, err := assembler.Pass1(srcLines(".org 0x0003\nFROBNICATE R0\n"))
	if err == nil {
		t.Fatal("want UnknownInstructionError, have nil")
	}
	if _, ok := err.(*assembler.UnknownInstructionError); !ok {
		t.Fatalf("want *UnknownInstructionError, have %T", err)
	}
}

func TestOrgBelowReservedIsFatal(t *testing.T) {
	_, _, _, err := assembler.Pass1(srcLines(".org 0x0001\nHALT\n"))
	if err == nil {
		t.Fatal("want OrgBelowReservedError, have nil")
	}
	if _, ok := err.(*assembler.OrgBelowReservedError); !ok {
		t.Fatalf("want *OrgBelowReservedError, have %T", err)
	}
}
