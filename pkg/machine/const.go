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

package machine

// MMIO addresses. 0xFF00..0xFF03 bypass RAM entirely; 0xFFFF is a guard
// address that discards writes and reads as zero.
const (
	AddrKBDStatus uint16 = 0xFF00
	AddrKBDData   uint16 = 0xFF01
	AddrTTYStatus uint16 = 0xFF02
	AddrTTYData   uint16 = 0xFF03

	AddrGuard uint16 = 0xFFFF
)

// Snapshot layout constants, see pkg/machine/snapshot.go.
const (
	SnapshotMagic   = "S8DI"
	SnapshotVersion = 0x01

	snapshotRegBytes     = 8
	snapshotPointerBytes = 6 // IP, SP, BP, each 2 bytes
	snapshotReservedLen  = 7

	SnapshotHeaderLen = len(SnapshotMagic) + 1 + snapshotRegBytes +
		snapshotPointerBytes + 1 + snapshotReservedLen

	SnapshotLen = SnapshotHeaderLen + (0xFFFF)
)
