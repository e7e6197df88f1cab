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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// DecodeHex decodes a hexadecimal literal in the format "0x..." (case
// insensitive), with no leading '#'.
func DecodeHex(s string) (uint32, error) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0, errors.New("invalid hex literal")
	}

	result, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, err
	}

	return uint32(result), nil
}

// DecodeBin decodes a binary literal in the format "0b..." (case
// insensitive).
func DecodeBin(s string) (uint32, error) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'b' && s[1] != 'B') {
		return 0, errors.New("invalid binary literal")
	}

	result, err := strconv.ParseUint(s[2:], 2, 32)
	if err != nil {
		return 0, err
	}

	return uint32(result), nil
}

// DecodeInt decodes a base-10 literal, with an optional leading '#' for
// immediate operands.
func DecodeInt(s string) (int64, error) {
	if strings.HasPrefix(s, "#") {
		s = s[1:]
	}

	return strconv.ParseInt(s, 10, 32)
}

// DecodeLiteral decodes a numeric literal in any of the three bases the
// assembler's grammar accepts: "0x" hexadecimal, "0b" binary, else
// base-10. A leading '#' (immediate-operand syntax) is stripped before
// the base is chosen.
func DecodeLiteral(s string) (uint32, error) {
	stripped := strings.TrimPrefix(s, "#")

	switch {
	case strings.HasPrefix(stripped, "0x") || strings.HasPrefix(stripped, "0X"):
		return DecodeHex(stripped)
	case strings.HasPrefix(stripped, "0b") || strings.HasPrefix(stripped, "0B"):
		return DecodeBin(stripped)
	default:
		v, err := DecodeInt(stripped)
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, errors.New("negative literal")
		}
		return uint32(v), nil
	}
}
