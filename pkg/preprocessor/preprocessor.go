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

// Package preprocessor flattens a ".include"-bearing source file into an
// ordered sequence of source-line records, the same way the teacher's
// assembler flattens "#include" before tokenizing — except here the
// current-file stack and the include-once set are kept as two disjoint
// structures, so a cycle and a harmless re-inclusion are told apart.
package preprocessor

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var includeDirective = regexp.MustCompile(`^\.include\b`)
var includePath = regexp.MustCompile(`^\.include\s+"([^"]*)"\s*$`)
var leadingLabel = regexp.MustCompile(`^\s*[A-Za-z_][A-Za-z0-9_]*\s*:`)

// Expand reads entryPath and every file it transitively includes,
// returning a flat ordered sequence of source-line records with
// ".include" directives replaced in place by their target's content.
func Expand(entryPath string) ([]SourceLine, error) {
	canon, err := canonicalize(entryPath)
	if err != nil {
		return nil, &FileNotFoundError{Path: entryPath}
	}

	x := &expander{
		entryDir: filepath.Dir(canon),
		seen:     map[string]bool{canon: true},
		stack:    []string{canon},
	}

	if err := x.expandFile(canon, nil); err != nil {
		return nil, err
	}
	return x.lines, nil
}

type expander struct {
	entryDir string
	seen     map[string]bool
	stack    []string
	lines    []SourceLine
}

func (x *expander) onStack(path string) bool {
	for _, p := range x.stack {
		if p == path {
			return true
		}
	}
	return false
}

func (x *expander) expandFile(path string, chain []string) error {
	f, err := os.Open(path)
	if err != nil {
		return &FileNotFoundError{Path: path}
	}
	defer f.Close()

	myChain := append(append([]string{}, chain...), path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		directive, ok := stripToDirective(text)
		if !ok || !includeDirective.MatchString(directive) {
			x.lines = append(x.lines, SourceLine{
				File:  path,
				Line:  lineNo,
				Text:  text,
				Chain: myChain,
			})
			continue
		}

		m := includePath.FindStringSubmatch(directive)
		if m == nil {
			return &InvalidIncludeSyntaxError{File: path, Line: lineNo, Text: text}
		}

		target, err := resolveInclude(m[1], filepath.Dir(path), x.entryDir)
		if err != nil {
			return &FileNotFoundError{File: path, Line: lineNo, Path: m[1]}
		}

		if x.onStack(target) {
			return &IncludeCycleError{
				File:  path,
				Line:  lineNo,
				Chain: append(append([]string{}, myChain...), target),
			}
		}
		if x.seen[target] {
			return &MultipleInclusionError{File: path, Line: lineNo, Path: m[1]}
		}

		x.seen[target] = true
		x.stack = append(x.stack, target)
		err = x.expandFile(target, myChain)
		x.stack = x.stack[:len(x.stack)-1]
		if err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &ReadError{Path: path, Err: err}
	}
	return nil
}

// stripToDirective strips a trailing ";" comment (outside any quoted
// string) and any leading "label:" prefixes, reporting whether anything
// other than whitespace remains.
func stripToDirective(line string) (string, bool) {
	stripped := stripComment(line)
	for {
		loc := leadingLabel.FindStringIndex(stripped)
		if loc == nil {
			break
		}
		stripped = stripped[loc[1]:]
	}
	stripped = strings.TrimSpace(stripped)
	return stripped, stripped != ""
}

func stripComment(line string) string {
	inString := false
	for i, r := range line {
		switch r {
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// resolveInclude applies the path-resolution rule: absolute paths are
// taken as-is; relative paths are tried first against the including
// file's directory, then against the entry file's directory.
func resolveInclude(raw, includingDir, entryDir string) (string, error) {
	if filepath.IsAbs(raw) {
		return canonicalize(raw)
	}
	if canon, err := canonicalize(filepath.Join(includingDir, raw)); err == nil {
		return canon, nil
	}
	return canonicalize(filepath.Join(entryDir, raw))
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
