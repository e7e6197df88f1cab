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
	"github.com/sophia8vm/sophia8/pkg/isa"
)

// canvas is pass 2's working state: the image under construction and
// the parallel occupancy bitmap that makes every overlapping write
// fatal, the way the teacher never needs to because LC-3's single pass
// can't produce one.
type canvas struct {
	image    *Image
	occupied [isa.MemSize]bool
	records  []DebugRecord
}

// Pass2 walks the pass-1 items in order, decoding each operand and
// emitting its bytes into a 65535-byte image, then writes the implicit
// entry stub at 0x0000..0x0002.
func Pass2(items []*Item, sym *SymTable, entry uint16) (*Image, []DebugRecord, error) {
	c := &canvas{image: &Image{}}
	for i := 0; i < isa.EntryStubLen; i++ {
		c.occupied[i] = true
	}

	for _, item := range items {
		var bytes []byte
		var err error

		switch item.Kind {
		case ItemInstruction:
			bytes, err = c.encodeInstruction(item, sym)
		case ItemDirective:
			bytes, err = c.encodeDirective(item, sym)
		}
		if err != nil {
			return nil, nil, err
		}

		if err := c.place(item.Addr, bytes, positionOf(item.Line)); err != nil {
			return nil, nil, err
		}

		c.records = append(c.records, DebugRecord{
			Addr:  item.Addr,
			Bytes: bytes,
			Kind:  recordKind(item.Kind),
			Line:  item.Line,
		})
	}

	stub := []byte{byte(isa.JMP), byte(entry >> 8), byte(entry)}
	copy(c.image.Bytes[0:isa.EntryStubLen], stub)
	c.records = append(c.records, DebugRecord{Addr: 0, Bytes: stub, Kind: RecordCode, Line: nil})

	return c.image, c.records, nil
}

func recordKind(k ItemKind) DebugRecordKind {
	if k == ItemInstruction {
		return RecordCode
	}
	return RecordData
}

// place writes bytes starting at addr, failing with Overlap on the
// first byte that's already been written.
func (c *canvas) place(addr uint16, bytes []byte, pos Position) error {
	for i, b := range bytes {
		a := int(addr) + i
		if a >= isa.MemSize {
			return &OutOfRangeError{Position: pos, Addr: uint32(a)}
		}
		if c.occupied[a] {
			return &OverlapError{Position: pos, Addr: uint16(a)}
		}
		c.image.Bytes[a] = b
		c.occupied[a] = true
	}
	return nil
}

func (c *canvas) encodeInstruction(item *Item, sym *SymTable) ([]byte, error) {
	op, _ := isa.Lookup(item.Name)
	out := make([]byte, 0, isa.Lengths[op])
	out = append(out, byte(op))

	sig := isa.Signatures[op]
	pos := positionOf(item.Line)

	for i, kind := range sig {
		tok := item.Operands[i]

		switch kind {
		case isa.Addr16:
			addr, ok := decodeAddr16(tok, sym)
			if !ok {
				if isIdentifier(tok) {
					return nil, &UndefinedLabelError{Position: pos, Label: tok}
				}
				return nil, &BadAddressError{Position: pos, Operand: tok}
			}
			out = append(out, byte(addr>>8), byte(addr))

		case isa.Imm8:
			v, ok := decodeImm8(tok)
			if !ok {
				return nil, &BadImmediateError{Position: pos, Operand: tok}
			}
			out = append(out, v)

		case isa.Gpr:
			reg, ok := isa.LookupRegister(tok, isa.Gpr)
			if !ok {
				return nil, &BadRegisterError{Position: pos, Operand: tok}
			}
			out = append(out, byte(reg))

		case isa.AnyReg:
			reg, ok := isa.LookupRegister(tok, isa.AnyReg)
			if !ok {
				return nil, &BadRegisterError{Position: pos, Operand: tok}
			}
			out = append(out, byte(reg))
		}
	}

	return out, nil
}

func (c *canvas) encodeDirective(item *Item, sym *SymTable) ([]byte, error) {
	pos := positionOf(item.Line)

	switch item.Name {
	case ".byte":
		out := make([]byte, 0, len(item.Operands))
		for _, tok := range item.Operands {
			v, ok := parseByteLiteral(tok)
			if !ok {
				return nil, &BadByteLiteralError{Position: pos, Operand: tok}
			}
			out = append(out, v)
		}
		return out, nil

	case ".word":
		out := make([]byte, 0, 2*len(item.Operands))
		for _, tok := range item.Operands {
			ident, v, isIdent, _ := parseWordToken(tok)
			if isIdent {
				addr, ok := sym.Labels[ident]
				if !ok {
					return nil, &UndefinedLabelError{Position: pos, Label: ident}
				}
				v = addr
			}
			out = append(out, byte(v>>8), byte(v))
		}
		return out, nil

	case ".string":
		body, _ := unquote(item.Operands[0])
		decoded, _ := decodeStringLiteral(body)
		return append(decoded, 0), nil
	}

	panic("assembler: unknown directive reached pass 2: " + item.Name)
}
