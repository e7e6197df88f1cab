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

package debugger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophia8vm/sophia8/pkg/debugger"
)

const sampleDeb = `; s8asm debug map (.deb)
; This file is generated automatically and matches the emitted image exactly.
; Image: sophia8_image.bin
; Format: AAAA  LEN  KIND  BYTES...  file:line: original source line

0000    3  CODE  07 00 06  <implicit>:0: JMP <entry>
0006    3  CODE  04 5A F2  foo.s8:12: SET #0x5A,R0
0009    1  CODE  00  foo.s8:13: HALT
0100    2  DATA  00 01  foo.s8:5: .word 1
`

func TestParseDebugMap(t *testing.T) {
	dm, err := debugger.ParseDebugMap(strings.NewReader(sampleDeb))
	require.NoError(t, err)

	assert.Equal(t, "sophia8_image.bin", dm.ImagePath)
	require.Len(t, dm.Records, 4)

	implicit := dm.Records[0]
	assert.Equal(t, uint16(0x0000), implicit.Addr)
	assert.Equal(t, []byte{0x07, 0x00, 0x06}, implicit.Bytes)
	assert.Equal(t, debugger.DebCode, implicit.Kind)
	assert.Empty(t, implicit.File)

	set := dm.Records[1]
	assert.Equal(t, uint16(0x0006), set.Addr)
	assert.Equal(t, "foo.s8", set.File)
	assert.Equal(t, 12, set.Line)
	assert.Equal(t, "SET #0x5A,R0", set.Text)

	data := dm.Records[3]
	assert.Equal(t, debugger.DebData, data.Kind)
	assert.Equal(t, 5, data.Line)
}

func TestParseDebugMapRejectsGarbage(t *testing.T) {
	_, err := debugger.ParseDebugMap(strings.NewReader("not a debug map\n"))
	require.Error(t, err)

	var invalid *debugger.InvalidDebFileError
	assert.ErrorAs(t, err, &invalid)
}
