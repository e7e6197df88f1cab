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

package debugger

import (
	"fmt"

	"github.com/k0kubun/pp/v3"

	"github.com/sophia8vm/sophia8/pkg/isa"
	"github.com/sophia8vm/sophia8/pkg/machine"
)

// Step implements machine.MachineDebugger. A single-step request takes
// priority over breakpoint matching; otherwise the current IP is
// checked against every armed breakpoint.
func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.IP == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// recordAt returns the record whose byte span covers addr; ok is false
// when no record covers it.
func (dm *DebMap) recordAt(addr uint16) (DebRecord, bool) {
	for _, r := range dm.Records {
		if r.contains(addr) {
			return r, true
		}
	}
	return DebRecord{}, false
}

// PrintSource prints the source line backing addr, then up to count-1
// further records in address order. Unlike the teacher's byte-offset
// scheme, the debug map already carries the original source text, so
// no seeking into a source file is needed.
func (dbg *Debugger) PrintSource(addr uint16, count uint16) {
	if dbg.Map == nil {
		fmt.Println("No debug map loaded")
		return
	}

	start, ok := dbg.Map.recordAt(addr)
	if !ok {
		fmt.Printf("No instruction found at %#04x\n", addr)
		return
	}

	printed := uint16(0)
	started := false
	for _, r := range dbg.Map.Records {
		if !started {
			if r.Addr != start.Addr {
				continue
			}
			started = true
		}
		if printed >= count {
			break
		}

		if r.File == "" {
			name := "???"
			if len(r.Bytes) > 0 {
				if n := isa.Name(isa.Opcode(r.Bytes[0])); n != "" {
					name = n
				}
			}
			fmt.Printf("\033[1m[%#04x]\033[0m <implicit> %s\n", r.Addr, name)
		} else {
			fmt.Printf("\033[1m[%#04x]\033[0m %s:%d: %s\n", r.Addr, r.File, r.Line, r.Text)
		}
		printed++
	}
}

// PrintMem prints a hex dump of count bytes starting at addr, four
// bytes per line, graying out zero bytes.
func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint16) {
	for i := addr; i < addr+count; i++ {
		if i == addr {
			fmt.Printf("\033[1m[%#04x]\033[0m ", i)
		} else if (i-addr)%4 == 0 {
			fmt.Println()
			fmt.Printf("\033[1m[%#04x]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Printf("\033[1;30m%#04x\033[0m ", result)
		} else {
			fmt.Printf("%#04x ", result)
		}
	}

	fmt.Println()
}

// PrintRegisters dumps the register file, pointers, and carry flag. It
// defers to pp for the structured form (useful when piping a session
// log) and also prints the teacher's bold-label one-liner.
func (dbg *Debugger) PrintRegisters(mc *machine.MachineState) {
	for i, r := range mc.R {
		fmt.Printf("\033[1mR%d:\033[0m %#02x\t", i, r)
		if i == 3 {
			fmt.Println()
		}
	}
	fmt.Println()
	fmt.Printf(
		"\033[1mIP:\033[0m %#04x\t\033[1mSP:\033[0m %#04x\t\033[1mBP:\033[0m %#04x\t\033[1mC:\033[0m %v\n",
		mc.IP, mc.SP, mc.BP, mc.C,
	)

	pp.Println(struct {
		R          [8]uint8
		IP, SP, BP uint16
		C          bool
	}{mc.R, mc.IP, mc.SP, mc.BP, mc.C})
}
