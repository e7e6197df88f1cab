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
	"strings"

	"github.com/sophia8vm/sophia8/pkg/encoding"
	"github.com/sophia8vm/sophia8/pkg/isa"
	"github.com/sophia8vm/sophia8/pkg/preprocessor"
)

// layout is pass 1's accumulated state: the symbol table, the ordered
// item list, and the bookkeeping the entry-address rule in section 4.3
// needs (an entry marker takes priority over the first numeric .org).
type layout struct {
	sym     *SymTable
	items   []*Item
	lc      uint32
	anyOrg  bool
	marker  bool
	markAt  uint16
	orgSeen bool
	orgAt   uint16
}

// Pass1 walks the flattened source, binding labels to the location
// counter and recording one Item per directive or instruction without
// resolving any operand that depends on a label defined later in the
// file. It mirrors the teacher's AssembleLC3Source scan in shape (strip
// comments, peel identifiers, classify, record) but splits the record
// step away from emission, since sophia8's layout must be fully known
// before any byte is written.
func Pass1(lines []preprocessor.SourceLine) (*SymTable, []*Item, uint16, error) {
	l := &layout{sym: NewSymTable(), lc: isa.MinOrg}

	for i := range lines {
		line := &lines[i]
		if err := l.step(line); err != nil {
			return nil, nil, 0, err
		}
	}

	if !l.anyOrg {
		return nil, nil, 0, &MissingOrgError{}
	}

	entry := l.orgAt
	if l.marker {
		entry = l.markAt
	}

	return l.sym, l.items, entry, nil
}

func (l *layout) step(line *preprocessor.SourceLine) error {
	pos := positionOf(line)
	text := stripComment(line.Text)

	for {
		label, rest, ok := peelLabel(text)
		if !ok {
			break
		}
		if _, exists := l.sym.Labels[label]; exists {
			return &DuplicateLabelError{Position: pos, Label: label}
		}
		l.sym.Labels[label] = uint16(l.lc)
		text = rest
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, ".") {
		return l.directive(pos, line, text)
	}
	return l.instruction(pos, line, text)
}

func splitKeyword(text string) (keyword, rest string) {
	i := strings.IndexFunc(text, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}

func (l *layout) directive(pos Position, line *preprocessor.SourceLine, text string) error {
	name, rest := splitKeyword(text)

	switch strings.ToLower(name) {
	case ".org":
		return l.orgDirective(pos, rest)

	case ".byte":
		operands := tokenizeOperands(rest)
		for _, tok := range operands {
			if _, ok := parseByteLiteral(tok); !ok {
				return &BadByteLiteralError{Position: pos, Operand: tok}
			}
		}
		return l.reserve(ItemDirective, ".byte", operands, uint16(len(operands)), line)

	case ".word":
		operands := tokenizeOperands(rest)
		for _, tok := range operands {
			if _, _, _, ok := parseWordToken(tok); !ok {
				return &BadWordLiteralError{Position: pos, Operand: tok}
			}
		}
		return l.reserve(ItemDirective, ".word", operands, uint16(2*len(operands)), line)

	case ".string":
		body, ok := unquote(rest)
		if !ok {
			return &BadStringEscapeError{Position: pos, Escape: rest}
		}
		decoded, fault := decodeStringLiteral(body)
		if fault != nil {
			if fault.escape != "" {
				return &BadStringEscapeError{Position: pos, Escape: fault.escape}
			}
			return &NonAsciiStringError{Position: pos, Rune: fault.nonAscii}
		}
		return l.reserve(ItemDirective, ".string", []string{rest}, uint16(len(decoded)+1), line)

	case ".include":
		// The preprocessor guarantees every ".include" line has already
		// been replaced by its target's content; reaching this means
		// the flattening step was skipped or is broken.
		panic("assembler: unexpanded .include reached pass 1")

	default:
		return &UnknownDirectiveError{Position: pos, Name: name}
	}
}

func (l *layout) orgDirective(pos Position, rest string) error {
	operands := tokenizeOperands(rest)

	if len(operands) == 0 {
		if l.marker {
			return &DuplicateEntryMarkerError{Position: pos}
		}
		l.marker = true
		l.markAt = uint16(l.lc)
		l.anyOrg = true
		return nil
	}
	if len(operands) != 1 {
		return &BadOperandCountError{Position: pos, Want: 1, Have: len(operands)}
	}
	if strings.HasPrefix(operands[0], "#") {
		return &OrgBelowReservedError{Position: pos, Addr: 0}
	}

	v, err := encoding.DecodeLiteral(operands[0])
	if err != nil || v < isa.MinOrg || v > 0xFFFF {
		return &OrgBelowReservedError{Position: pos, Addr: v}
	}

	l.lc = v
	if !l.orgSeen {
		l.orgSeen = true
		l.orgAt = uint16(v)
	}
	l.anyOrg = true
	return nil
}

func (l *layout) instruction(pos Position, line *preprocessor.SourceLine, text string) error {
	name, rest := splitKeyword(text)

	op, ok := isa.Lookup(name)
	if !ok {
		return &UnknownInstructionError{Position: pos, Name: name}
	}

	sig := isa.Signatures[op]
	operands := tokenizeOperands(rest)
	if len(operands) != len(sig) {
		return &BadOperandCountError{Position: pos, Want: len(sig), Have: len(operands)}
	}

	return l.reserve(ItemInstruction, name, operands, uint16(isa.Lengths[op]), line)
}

func (l *layout) reserve(kind ItemKind, name string, operands []string, length uint16, line *preprocessor.SourceLine) error {
	if uint32(l.lc)+uint32(length) > uint32(isa.MemSize) {
		return &OutOfRangeError{Position: positionOf(line), Addr: l.lc}
	}

	l.items = append(l.items, &Item{
		Kind:     kind,
		Name:     name,
		Operands: operands,
		Addr:     uint16(l.lc),
		Len:      length,
		Line:     line,
	})
	l.lc += uint32(length)
	return nil
}

// unquote strips one matching pair of double quotes, as ".string"
// requires; unlike strconv.Unquote it does not itself interpret
// escapes, since decodeStringLiteral owns that per the spec's own
// escape set rather than Go's.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}
