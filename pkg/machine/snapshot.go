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

import (
	"fmt"
	"io"
)

// InvalidSnapshotError reports a failure verifying or decoding a
// snapshot: bad magic, unsupported version, or a short read.
type InvalidSnapshotError struct {
	Reason string
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s", e.Reason)
}

// Save writes the full state layout from the data model's "Snapshot"
// section: magic, version, eight GPR bytes, IP/SP/BP big-endian, the
// carry byte, seven reserved zero bytes, then the full memory image.
// Generalized from LoadBin's encoding/binary streaming, which the
// teacher uses for the mirror-image operation (reading a fixed binary
// layout into machine state).
func (mc *Machine) Save(w io.Writer) error {
	header := make([]byte, SnapshotHeaderLen)
	i := 0

	copy(header[i:], SnapshotMagic)
	i += len(SnapshotMagic)

	header[i] = SnapshotVersion
	i++

	for _, r := range mc.State.R {
		header[i] = r
		i++
	}

	for _, ptr := range []uint16{mc.State.IP, mc.State.SP, mc.State.BP} {
		header[i] = byte(ptr >> 8)
		header[i+1] = byte(ptr)
		i += 2
	}

	if mc.State.C {
		header[i] = 1
	}
	i++

	// i..i+7 reserved, already zero.

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(mc.State.Memory[:]); err != nil {
		return err
	}
	return nil
}

// Restore verifies the magic and version, then loads register, pointer,
// carry, and memory state from r. Restoration always clears STOP,
// matching "restoration resets STOP = 0" in the data model.
func (mc *Machine) Restore(r io.Reader) error {
	header := make([]byte, SnapshotHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return &InvalidSnapshotError{Reason: "short header: " + err.Error()}
	}

	i := 0

	if string(header[i:i+len(SnapshotMagic)]) != SnapshotMagic {
		return &InvalidSnapshotError{Reason: "bad magic"}
	}
	i += len(SnapshotMagic)

	if header[i] != SnapshotVersion {
		return &InvalidSnapshotError{Reason: "unsupported version"}
	}
	i++

	var state MachineState

	for k := range state.R {
		state.R[k] = header[i]
		i++
	}

	ptrs := [3]*uint16{&state.IP, &state.SP, &state.BP}
	for _, p := range ptrs {
		*p = uint16(header[i])<<8 | uint16(header[i+1])
		i += 2
	}

	state.C = header[i] != 0
	i++

	// remaining reserved bytes are ignored.

	if _, err := io.ReadFull(r, state.Memory[:]); err != nil {
		return &InvalidSnapshotError{Reason: "short memory image: " + err.Error()}
	}

	state.Stop = false
	mc.State = state
	return nil
}
