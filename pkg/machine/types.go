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
	"bufio"

	"github.com/sophia8vm/sophia8/pkg/isa"
)

// DeviceHandler bundles the two host-facing I/O streams the MMIO window
// talks to. Keyboard supplies raw bytes already read from stdin (the
// non-blocking poll lives in device.go); Display is flushed after every
// byte written to TTY_DATA.
type DeviceHandler struct {
	Keyboard *KeyboardQueue
	Display  *bufio.Writer
}

// MachineState is the full architectural state of a Sophia8 machine:
// eight 8-bit general-purpose registers, three 16-bit pointers, the
// carry flag, the stop trigger, and the 65535-byte memory image.
type MachineState struct {
	R  [8]uint8
	IP uint16
	SP uint16
	BP uint16

	C    bool
	Stop bool

	Memory [isa.MemSize]byte
}

// MachineDebugger is the hook surface a debugger front-end attaches to a
// Machine: one call after every retired instruction, one on every memory
// read, one on every memory write. A machine with no Debugger runs with
// zero dispatch overhead beyond the three nil checks.
type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

// Machine is a Sophia8 virtual machine: its state, its attached devices,
// and an optional debugger hook.
type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
}
