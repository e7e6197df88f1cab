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

package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/sophia8vm/sophia8/pkg/debugger"
	"github.com/sophia8vm/sophia8/pkg/machine"
)

var helpvar bool
var debugvar bool
var shouldexit bool

const usage = "sophia8 [-debug] [image.bin|program.deb|debug.img [file line]]"

const helptext = `sophia8                                     runs built-in self-test
sophia8 <image.bin>                         load and run
sophia8 <program.deb>                       load map, then its bin, run
sophia8 <program.deb> <file> <line>         run to breakpoint
sophia8 debug.img                           resume
sophia8 debug.img <program.deb> <file> <line>   resume with new breakpoint
sophia8 -h | --help`

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "h", false, "Displays command usage")
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Drops into the interactive debug REPL")
	flag.Parse()
}

// loadImageBytes feeds raw bytes into the machine, choosing Restore or
// LoadImage by sniffing the snapshot magic.
func loadImageBytes(mc *machine.Machine, data []byte) error {
	if len(data) >= 4 && string(data[:4]) == machine.SnapshotMagic {
		return mc.Restore(bytes.NewReader(data))
	}
	return mc.LoadImage(bytes.NewReader(data))
}

func loadImagePath(mc *machine.Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return loadImageBytes(mc, data)
}

func loadDebugMap(path string) (*debugger.DebMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &debugger.MissingDebFileError{Path: path}
	}
	defer file.Close()

	dm, err := debugger.ParseDebugMap(file)
	if err != nil {
		return nil, err
	}

	imagePath := dm.ImagePath
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(path), imagePath)
	}
	dm.ImagePath = imagePath

	return dm, nil
}

func sophia8() int {
	if helpvar {
		fmt.Println(helptext)
		return 0
	}

	args := flag.Args()

	var mc machine.Machine
	var dh machine.DeviceHandler

	kbd, err := machine.NewKeyboardQueue(int(os.Stdin.Fd()))
	if err != nil {
		log.Println(err)
		return 1
	}
	dh.Keyboard = kbd
	dh.Display = bufio.NewWriter(os.Stdout)
	mc.Devices = &dh

	var dbg *debugger.Debugger

	switch len(args) {
	case 0:
		mc.FillSelfTest()

	case 1:
		if filepath.Ext(args[0]) == ".deb" {
			dm, err := loadDebugMap(args[0])
			if err != nil {
				log.Println(err)
				return 1
			}
			if err := loadImagePath(&mc, dm.ImagePath); err != nil {
				log.Println(err)
				return 1
			}
		} else if err := loadImagePath(&mc, args[0]); err != nil {
			log.Println(err)
			return 1
		}

	case 3:
		dm, err := loadDebugMap(args[0])
		if err != nil {
			log.Println(err)
			return 1
		}
		if err := loadImagePath(&mc, dm.ImagePath); err != nil {
			log.Println(err)
			return 1
		}

		line, err := strconv.Atoi(args[2])
		if err != nil {
			log.Println(err)
			return 2
		}
		addr, err := debugger.Resolve(dm, args[1], line)
		if err != nil {
			log.Println(err)
			return 1
		}
		dbg = &debugger.Debugger{Map: dm, BinaryPath: dm.ImagePath, Breakpoints: []debugger.Breakpoint{{Addr: addr}}}

	case 4:
		if err := loadImagePath(&mc, args[0]); err != nil {
			log.Println(err)
			return 1
		}

		dm, err := loadDebugMap(args[1])
		if err != nil {
			log.Println(err)
			return 1
		}

		line, err := strconv.Atoi(args[3])
		if err != nil {
			log.Println(err)
			return 2
		}
		addr, err := debugger.Resolve(dm, args[2], line)
		if err != nil {
			log.Println(err)
			return 1
		}
		dbg = &debugger.Debugger{Map: dm, BinaryPath: args[0], Breakpoints: []debugger.Breakpoint{{Addr: addr}}}

	default:
		log.Println(usage)
		return 2
	}

	if debugvar && dbg == nil {
		dbg = &debugger.Debugger{}
	}

	if dbg != nil {
		if debugvar {
			dbg.HandleBreak = handleBreak
			dbg.HandleRead = handleRead
			dbg.HandleWrite = handleWrite
		} else {
			dbg.HandleBreak = haltOnBreak
		}
		mc.Debugger = dbg
	}

	enterRawTerm()
	defer exitRawTerm()

	c := make(chan os.Signal, 1)
	defer close(c)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			fmt.Println()
			if dbg != nil {
				dbg.Break = true
			}
		}
	}()

	if debugvar {
		debugREPL(dbg, &mc)
	}

	for !shouldexit && !mc.State.Stop {
		mc.Step()
	}

	return 0
}

func main() {
	os.Exit(sophia8())
}
