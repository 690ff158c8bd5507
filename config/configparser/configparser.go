/*
 * rv32ima - Board configuration file parser.
 *
 * Copyright (c) 2026
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package configparser reads the board configuration file: RAM size, the
// kernel/dtb image paths, and the handful of knobs the CLI can also set.
// A CLI flag always overrides the same setting read from the file.
//
// File format:
//
//	'#' starts a comment, rest of line ignored.
//	<line> := <key> <whitespace> <value>
//	<key>  := "ram" | "kernel" | "dtb" | "sleep" | "interactive"
//	<value> is a bare token; "ram" accepts a trailing K/M/G multiplier.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Board holds every setting the config file can set.
type Board struct {
	RAMSize     uint32 // bytes
	KernelPath  string
	DTBPath     string
	SleepMicros uint32
	Interactive bool
}

// Default returns a Board with the interpreter's baseline settings.
func Default() Board {
	return Board{RAMSize: 64 * 1024 * 1024}
}

type optionLine struct {
	line string
	pos  int
}

var lineNumber int

// Load reads a board configuration file and applies it on top of b,
// returning the merged result. Settings absent from the file are left
// untouched.
func Load(name string, b Board) (Board, error) {
	file, err := os.Open(name)
	if err != nil {
		return b, err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		var err error
		line := optionLine{}
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return b, err
		}
		if perr := line.apply(&b); perr != nil {
			return b, perr
		}
	}
	return b, nil
}

func (line *optionLine) apply(b *Board) error {
	key := line.getName()
	if key == "" {
		return nil
	}
	line.skipSpace()
	value := line.getRest()

	switch strings.ToLower(key) {
	case "ram":
		size, err := parseSize(value)
		if err != nil {
			return fmt.Errorf("line %d: ram: %w", lineNumber, err)
		}
		b.RAMSize = size
	case "kernel":
		b.KernelPath = value
	case "dtb":
		b.DTBPath = value
	case "sleep":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: sleep: %w", lineNumber, err)
		}
		b.SleepMicros = uint32(n)
	case "interactive":
		b.Interactive = value == "" || value == "1" || strings.EqualFold(value, "true")
	default:
		return fmt.Errorf("line %d: unknown setting %q", lineNumber, key)
	}
	return nil
}

// parseSize parses a byte count with an optional K/M/G suffix.
func parseSize(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	mult := uint64(1)
	switch unicode.ToUpper(rune(s[len(s)-1])) {
	case 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n * mult), nil
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// getName reads the key token at the start of the line.
func (line *optionLine) getName() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}
	start := line.pos
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) && line.line[line.pos] != '#' {
		line.pos++
	}
	return line.line[start:line.pos]
}

// getRest returns the remaining token on the line, trimmed of trailing
// whitespace and any trailing comment.
func (line *optionLine) getRest() string {
	if line.isEOL() {
		return ""
	}
	rest := line.line[line.pos:]
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
