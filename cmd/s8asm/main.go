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
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sophia8vm/sophia8/pkg/assembler"
)

var helpvar bool
var outvar string

const usage = "s8asm [-o outfile] filename"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "h", false, "Displays command usage")
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.StringVar(
		&outvar, "o", "",
		"Specifies a precise name for the output image, "+
			"overriding the default means of determining it",
	)
	flag.Parse()
}

// withExt replaces path's extension with ext.
func withExt(path, ext string) string {
	return filepath.Join(filepath.Dir(path), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+ext)
}

func s8asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	args := flag.Args()

	if len(args) != 1 {
		log.Println(usage)
		return 2
	}

	entryPath := args[0]

	if stat, err := os.Stat(entryPath); err != nil {
		log.Println(err)
		return 2
	} else if stat.IsDir() {
		log.Printf("%s is not a valid sophia8 assembly file", entryPath)
		return 2
	}

	log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m ", filepath.Base(entryPath)))

	if outvar == "" {
		outvar = "sophia8_image.bin"
	}

	result, err := assembler.AssembleSophia8Source(entryPath)
	if err != nil {
		log.Println(err)
		return 1
	}

	if err := os.WriteFile(outvar, result.Image.Bytes[:], 0666); err != nil {
		log.Println("Error writing output image")
		log.Println(err)
		return 1
	}

	preFile, err := os.Create(withExt(outvar, ".pre.s8"))
	if err != nil {
		log.Println("Error writing preprocessed source")
		log.Println(err)
		return 1
	}
	if err := assembler.WritePreprocessedSource(preFile, result.Source); err != nil {
		preFile.Close()
		log.Println("Error writing preprocessed source")
		log.Println(err)
		return 1
	}
	preFile.Close()

	debFile, err := os.Create(withExt(outvar, ".deb"))
	if err != nil {
		log.Println("Error writing debug map")
		log.Println(err)
		return 1
	}
	if err := assembler.WriteDebugMap(debFile, outvar, result.DebugRecords); err != nil {
		debFile.Close()
		log.Println("Error writing debug map")
		log.Println(err)
		return 1
	}
	debFile.Close()

	return 0
}

func main() {
	os.Exit(s8asm())
}
