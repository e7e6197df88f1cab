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
	"errors"
	"io"

	"github.com/sophia8vm/sophia8/pkg/isa"
)

// Reset clears all architectural state: registers, pointers, carry,
// stop, and memory. It does not fill memory with anything; callers
// either follow it with LoadImage or with FillSelfTest.
func (mc *MachineState) Reset() {
	for i := range mc.R {
		mc.R[i] = 0
	}
	mc.IP = 0x0000
	mc.SP = 0xFFFF
	mc.BP = 0xFFFF
	mc.C = false
	mc.Stop = false

	for i := range mc.Memory {
		mc.Memory[i] = 0
	}
}

// FillSelfTest resets the machine and fills every memory byte with the
// HALT opcode, the built-in self-test path invoked when sophia8 runs
// with no image argument at all.
func (mc *Machine) FillSelfTest() {
	mc.State.Reset()
	for i := range mc.State.Memory {
		mc.State.Memory[i] = byte(isa.HALT)
	}
}

// LoadImage resets the machine, then copies exactly isa.MemSize bytes
// from reader into memory. A short read (reader has fewer than
// isa.MemSize bytes) is not an error; the remainder stays zero.
func (mc *Machine) LoadImage(reader io.Reader) error {
	mc.State.Reset()

	n, err := io.ReadFull(reader, mc.State.Memory[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	_ = n
	return nil
}

// read dispatches a memory read through the MMIO classifier before
// falling through to plain RAM.
func (mc *Machine) read(addr uint16) byte {
	var value byte

	switch addr {
	case AddrGuard:
		value = 0

	case AddrKBDStatus:
		if mc.Devices != nil && mc.Devices.Keyboard != nil {
			mc.Devices.Keyboard.Fill()
			if mc.Devices.Keyboard.HasByte() {
				value = 1
			}
		}

	case AddrKBDData:
		if mc.Devices != nil && mc.Devices.Keyboard != nil {
			mc.Devices.Keyboard.Fill()
			value = mc.Devices.Keyboard.Take()
		}

	case AddrTTYStatus:
		value = 1

	case AddrTTYData:
		value = 0

	default:
		value = mc.State.Memory[addr]
	}

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return value
}

// write dispatches a memory write through the MMIO classifier. The
// three read-only MMIO addresses silently discard writes, as does the
// guard address 0xFFFF.
func (mc *Machine) write(addr uint16, value byte) {
	switch addr {
	case AddrGuard, AddrKBDStatus, AddrKBDData, AddrTTYStatus:
		// discarded

	case AddrTTYData:
		if mc.Devices != nil && mc.Devices.Display != nil {
			if err := mc.Devices.Display.WriteByte(value); err != nil {
				panic(err)
			}
			if err := mc.Devices.Display.Flush(); err != nil {
				panic(err)
			}
		}

	default:
		mc.State.Memory[addr] = value
	}

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// peekWord16 reads a big-endian 16-bit value at addr, addr+1 without
// touching SP.
func (mc *Machine) peekWord16(addr uint16) uint16 {
	hi := mc.read(addr)
	lo := mc.read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// pushWord16 writes value big-endian into mem[SP-2], mem[SP-1] and
// leaves SP at SP-2 — the convention PUSH IP/SP/BP and CALL's return
// address push share.
func (mc *Machine) pushWord16(value uint16) {
	hi := byte(value >> 8)
	lo := byte(value)
	old := mc.State.SP
	mc.write(old-2, hi)
	mc.write(old-1, lo)
	mc.State.SP = old - 2
}

// Step fetches, decodes, and executes one instruction, then runs the
// attached Debugger's Step hook. Unknown opcodes and bad register
// tokens transition the machine to a stopped state with no diagnostic:
// VM runtime faults are undefined program behavior, not Go errors.
func (mc *Machine) Step() {
	if mc.State.Stop {
		return
	}

	ip := mc.State.IP
	opcode := isa.Opcode(mc.read(ip))

	switch opcode {
	case isa.HALT:
		mc.State.Stop = true

	case isa.NOP:
		mc.State.IP++

	case isa.SET:
		imm := mc.read(ip + 1)
		idx, ok := isa.GPRIndex(mc.read(ip + 2))
		if !ok {
			mc.State.Stop = true
			break
		}
		mc.State.R[idx] = imm
		mc.State.IP += 3

	case isa.LOAD:
		hi := mc.read(ip + 1)
		lo := mc.read(ip + 2)
		idx, ok := isa.GPRIndex(mc.read(ip + 3))
		if !ok {
			mc.State.Stop = true
			break
		}
		addr := uint16(hi)<<8 | uint16(lo)
		mc.State.R[idx] = mc.read(addr)
		mc.State.IP += 4

	case isa.STORE:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		hi := mc.read(ip + 2)
		lo := mc.read(ip + 3)
		if !ok {
			mc.State.Stop = true
			break
		}
		addr := uint16(hi)<<8 | uint16(lo)
		mc.write(addr, mc.State.R[idx])
		mc.State.IP += 4

	case isa.STORER:
		isrc, ok1 := isa.GPRIndex(mc.read(ip + 1))
		ihi, ok2 := isa.GPRIndex(mc.read(ip + 2))
		ilo, ok3 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2 && ok3) {
			mc.State.Stop = true
			break
		}
		addr := uint16(mc.State.R[ihi])<<8 | uint16(mc.State.R[ilo])
		mc.write(addr, mc.State.R[isrc])
		mc.State.IP += 4

	case isa.LOADR:
		idst, ok1 := isa.GPRIndex(mc.read(ip + 1))
		ihi, ok2 := isa.GPRIndex(mc.read(ip + 2))
		ilo, ok3 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2 && ok3) {
			mc.State.Stop = true
			break
		}
		addr := uint16(mc.State.R[ihi])<<8 | uint16(mc.State.R[ilo])
		mc.State.R[idst] = mc.read(addr)
		mc.State.IP += 4

	case isa.INC:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		if !ok {
			mc.State.Stop = true
			break
		}
		v := mc.State.R[idx] + 1
		mc.State.C = v == 0x00
		mc.State.R[idx] = v
		mc.State.IP += 2

	case isa.DEC:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		if !ok {
			mc.State.Stop = true
			break
		}
		v := mc.State.R[idx] - 1
		mc.State.C = v == 0xFF
		mc.State.R[idx] = v
		mc.State.IP += 2

	case isa.JMP:
		hi := mc.read(ip + 1)
		lo := mc.read(ip + 2)
		mc.State.IP = uint16(hi)<<8 | uint16(lo)

	case isa.CMP:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		imm := mc.read(ip + 2)
		if !ok {
			mc.State.Stop = true
			break
		}
		pre := mc.State.R[idx]
		mc.State.C = pre < imm
		mc.State.R[idx] = pre - imm
		mc.State.IP += 3

	case isa.CMPR:
		in, ok1 := isa.GPRIndex(mc.read(ip + 1))
		im, ok2 := isa.GPRIndex(mc.read(ip + 2))
		if !(ok1 && ok2) {
			mc.State.Stop = true
			break
		}
		preN, preM := mc.State.R[in], mc.State.R[im]
		mc.State.C = preN < preM
		mc.State.R[in] = preN - preM
		mc.State.IP += 3

	case isa.JZ:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		hi := mc.read(ip + 2)
		lo := mc.read(ip + 3)
		if !ok {
			mc.State.Stop = true
			break
		}
		if mc.State.R[idx] == 0 {
			mc.State.IP = uint16(hi)<<8 | uint16(lo)
		} else {
			mc.State.IP += 4
		}

	case isa.JNZ:
		idx, ok := isa.GPRIndex(mc.read(ip + 1))
		hi := mc.read(ip + 2)
		lo := mc.read(ip + 3)
		if !ok {
			mc.State.Stop = true
			break
		}
		if mc.State.R[idx] != 0 {
			mc.State.IP = uint16(hi)<<8 | uint16(lo)
		} else {
			mc.State.IP += 4
		}

	case isa.JC:
		hi := mc.read(ip + 1)
		lo := mc.read(ip + 2)
		if mc.State.C {
			mc.State.IP = uint16(hi)<<8 | uint16(lo)
		} else {
			mc.State.IP += 3
		}

	case isa.JNC:
		hi := mc.read(ip + 1)
		lo := mc.read(ip + 2)
		if !mc.State.C {
			mc.State.IP = uint16(hi)<<8 | uint16(lo)
		} else {
			mc.State.IP += 3
		}

	case isa.ADD:
		imm := mc.read(ip + 1)
		idx, ok := isa.GPRIndex(mc.read(ip + 2))
		if !ok {
			mc.State.Stop = true
			break
		}
		sum := uint16(mc.State.R[idx]) + uint16(imm)
		mc.State.C = sum > 0xFF
		mc.State.R[idx] = byte(sum)
		mc.State.IP += 3

	case isa.ADDR:
		isrc, ok1 := isa.GPRIndex(mc.read(ip + 1))
		idst, ok2 := isa.GPRIndex(mc.read(ip + 2))
		if !(ok1 && ok2) {
			mc.State.Stop = true
			break
		}
		sum := uint16(mc.State.R[idst]) + uint16(mc.State.R[isrc])
		mc.State.C = sum > 0xFF
		mc.State.R[idst] = byte(sum)
		mc.State.IP += 3

	case isa.SUB:
		imm := mc.read(ip + 1)
		idx, ok := isa.GPRIndex(mc.read(ip + 2))
		if !ok {
			mc.State.Stop = true
			break
		}
		pre := mc.State.R[idx]
		mc.State.C = pre < imm
		mc.State.R[idx] = pre - imm
		mc.State.IP += 3

	case isa.SUBR:
		isrc, ok1 := isa.GPRIndex(mc.read(ip + 1))
		idst, ok2 := isa.GPRIndex(mc.read(ip + 2))
		if !(ok1 && ok2) {
			mc.State.Stop = true
			break
		}
		pre, sub := mc.State.R[idst], mc.State.R[isrc]
		mc.State.C = pre < sub
		mc.State.R[idst] = pre - sub
		mc.State.IP += 3

	case isa.MUL:
		imm := mc.read(ip + 1)
		ihi, ok1 := isa.GPRIndex(mc.read(ip + 2))
		ilo, ok2 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2) {
			mc.State.Stop = true
			break
		}
		p := uint16(mc.State.R[ilo]) * uint16(imm)
		mc.State.C = p > 0xFF
		mc.State.R[ilo] = byte(p)
		mc.State.R[ihi] = byte(p >> 8)
		mc.State.IP += 4

	case isa.MULR:
		isrc, ok1 := isa.GPRIndex(mc.read(ip + 1))
		ihi, ok2 := isa.GPRIndex(mc.read(ip + 2))
		ilo, ok3 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2 && ok3) {
			mc.State.Stop = true
			break
		}
		p := uint16(mc.State.R[ilo]) * uint16(mc.State.R[isrc])
		mc.State.C = p > 0xFF
		mc.State.R[ilo] = byte(p)
		mc.State.R[ihi] = byte(p >> 8)
		mc.State.IP += 4

	case isa.DIV:
		imm := mc.read(ip + 1)
		iq, ok1 := isa.GPRIndex(mc.read(ip + 2))
		ir, ok2 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2) || imm == 0 {
			mc.State.Stop = true
			break
		}
		v := mc.State.R[iq]
		q, r := v/imm, v%imm
		mc.State.R[iq] = q
		mc.State.R[ir] = r
		mc.State.IP += 4

	case isa.DIVR:
		isrc, ok1 := isa.GPRIndex(mc.read(ip + 1))
		iq, ok2 := isa.GPRIndex(mc.read(ip + 2))
		ir, ok3 := isa.GPRIndex(mc.read(ip + 3))
		if !(ok1 && ok2 && ok3) || mc.State.R[isrc] == 0 {
			mc.State.Stop = true
			break
		}
		v, d := mc.State.R[iq], mc.State.R[isrc]
		q, r := v/d, v%d
		mc.State.R[iq] = q
		mc.State.R[ir] = r
		mc.State.IP += 4

	case isa.SHL:
		n := mc.read(ip + 1)
		idx, ok := isa.GPRIndex(mc.read(ip + 2))
		if !ok {
			mc.State.Stop = true
			break
		}
		pre := mc.State.R[idx]
		if n > 0 {
			mc.State.C = ((pre<<(n-1))>>7)&1 == 1
		}
		mc.State.R[idx] = pre << n
		mc.State.IP += 3

	case isa.SHR:
		n := mc.read(ip + 1)
		idx, ok := isa.GPRIndex(mc.read(ip + 2))
		if !ok {
			mc.State.Stop = true
			break
		}
		pre := mc.State.R[idx]
		if n > 0 {
			mc.State.C = (pre>>(n-1))&1 == 1
		}
		mc.State.R[idx] = pre >> n
		mc.State.IP += 3

	case isa.PUSH:
		tok := mc.read(ip + 1)
		switch {
		case isa.RegToken(tok) == isa.RegIP:
			mc.pushWord16(mc.State.IP)
			mc.State.IP += 2
		case isa.RegToken(tok) == isa.RegSP:
			mc.pushWord16(mc.State.SP)
			mc.State.IP += 2
		case isa.RegToken(tok) == isa.RegBP:
			mc.pushWord16(mc.State.BP)
			mc.State.IP += 2
		default:
			if idx, ok := isa.GPRIndex(tok); ok {
				mc.State.SP--
				mc.write(mc.State.SP, mc.State.R[idx])
				mc.State.IP += 2
			} else {
				mc.State.Stop = true
			}
		}

	case isa.POP:
		tok := mc.read(ip + 1)
		switch {
		case isa.RegToken(tok) == isa.RegIP:
			value := mc.peekWord16(mc.State.SP)
			mc.State.SP += 2
			mc.State.IP = value + 2
		case isa.RegToken(tok) == isa.RegSP:
			value := mc.peekWord16(mc.State.SP)
			mc.State.SP = value
			mc.State.SP += 2
			mc.State.IP += 2
		case isa.RegToken(tok) == isa.RegBP:
			value := mc.peekWord16(mc.State.SP)
			mc.State.SP += 2
			mc.State.BP = value
			mc.State.IP += 2
		default:
			if idx, ok := isa.GPRIndex(tok); ok {
				mc.State.R[idx] = mc.read(mc.State.SP)
				mc.State.SP++
				mc.State.IP += 2
			} else {
				mc.State.Stop = true
			}
		}

	case isa.CALL:
		hi := mc.read(ip + 1)
		lo := mc.read(ip + 2)
		target := uint16(hi)<<8 | uint16(lo)
		mc.pushWord16(ip + 3)
		mc.State.IP = target

	case isa.RET:
		value := mc.peekWord16(mc.State.SP)
		mc.State.SP += 2
		mc.State.IP = value

	default:
		mc.State.Stop = true
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}
}
