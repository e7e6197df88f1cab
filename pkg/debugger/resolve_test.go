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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophia8vm/sophia8/pkg/debugger"
)

func sampleMap() *debugger.DebMap {
	return &debugger.DebMap{
		ImagePath: "sophia8_image.bin",
		Records: []debugger.DebRecord{
			{Addr: 0x0000, Bytes: []byte{0x07, 0x00, 0x06}, Kind: debugger.DebCode},
			{Addr: 0x0006, Bytes: []byte{0x04, 0x5A, 0xF2}, Kind: debugger.DebCode, File: "dir/foo.s8", Line: 12, Text: "SET #0x5A,R0"},
			{Addr: 0x0009, Bytes: []byte{0x00}, Kind: debugger.DebCode, File: "dir/foo.s8", Line: 13, Text: "HALT"},
			{Addr: 0x0100, Bytes: []byte{0x00, 0x01}, Kind: debugger.DebData, File: "dir/foo.s8", Line: 5, Text: ".word 1"},
		},
	}
}

func TestResolveExactFileMatch(t *testing.T) {
	addr, err := debugger.Resolve(sampleMap(), "dir/foo.s8", 12)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0006), addr)
}

func TestResolveBasenameFallback(t *testing.T) {
	addr, err := debugger.Resolve(sampleMap(), "foo.s8", 13)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0009), addr)
}

func TestResolveNoExecutableOnLine(t *testing.T) {
	_, err := debugger.Resolve(sampleMap(), "foo.s8", 5)
	require.Error(t, err)

	var want *debugger.NoExecutableOnLineError
	assert.ErrorAs(t, err, &want)
}

func TestResolveBreakpointNotFound(t *testing.T) {
	_, err := debugger.Resolve(sampleMap(), "foo.s8", 999)
	require.Error(t, err)

	var want *debugger.BreakpointNotFoundError
	assert.ErrorAs(t, err, &want)
}

func TestResolvePicksSmallestAddress(t *testing.T) {
	dm := sampleMap()
	dm.Records = append(dm.Records, debugger.DebRecord{
		Addr: 0x0020, Bytes: []byte{0x00}, Kind: debugger.DebCode,
		File: "dir/foo.s8", Line: 12, Text: "duplicate line number",
	})

	addr, err := debugger.Resolve(dm, "dir/foo.s8", 12)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0006), addr)
}
