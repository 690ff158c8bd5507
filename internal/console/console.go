/*
 * rv32ima - Interactive console: a liner-based command reader for the
 * single-step debugger.
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

// Package console is the operator-facing side of the interpreter: a
// liner-based REPL for step/break/registers/memory-dump/quit commands. It only ever
// reads CPU state or requests a step; it never mutates architectural
// state directly, so the hart's Step loop stays the single place that
// touches registers, CSRs or the bus (spec.md §5's "no device initiates
// an event on its own" rule applies here too — the console drives the
// hart, the hart never drives the console).
package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/rcornwell/rv32ima/internal/cpu"
	"github.com/rcornwell/rv32ima/util/hex"
)

// commands the completer offers and process understands.
var commandNames = []string{"step", "continue", "break", "regs", "mem", "pc", "quit", "help"}

// Console drives a CPU one command at a time from an interactive prompt.
type Console struct {
	cpu        *cpu.CPU
	breakpoint *uint32
}

// New returns a Console attached to c.
func New(c *cpu.CPU) *Console {
	return &Console{cpu: c}
}

// Run reads commands until the operator quits or aborts the prompt
// (Ctrl-D/Ctrl-C), mirroring the teacher's ConsoleReader loop.
func (con *Console) Run() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, name := range commandNames {
			if strings.HasPrefix(name, partial) {
				out = append(out, name)
			}
		}
		return out
	})

	for {
		command, err := line.Prompt("rv32ima> ")
		if err == nil {
			line.AppendHistory(command)
			quit, perr := con.process(command)
			if perr != nil {
				fmt.Println("error: " + perr.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		return err
	}
}

// process runs a single command line and reports whether the console
// should exit.
func (con *Console) process(command string) (bool, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return false, fmt.Errorf("step: %w", err)
			}
			n = v
		}
		return false, con.step(n)

	case "continue", "c":
		return false, con.continueUntilBreak()

	case "break", "b":
		if len(fields) < 2 {
			con.breakpoint = nil
			fmt.Println("breakpoint cleared")
			return false, nil
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			return false, fmt.Errorf("break: %w", err)
		}
		a := uint32(addr)
		con.breakpoint = &a
		fmt.Printf("breakpoint set at %#x\n", a)
		return false, nil

	case "regs", "r":
		con.printRegs()
		return false, nil

	case "mem", "m":
		if len(fields) < 2 {
			return false, fmt.Errorf("mem: usage: mem <addr> [count]")
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			return false, fmt.Errorf("mem: %w", err)
		}
		count := 1
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return false, fmt.Errorf("mem: %w", err)
			}
			count = n
		}
		return false, con.dumpMem(uint32(addr), count)

	case "pc":
		fmt.Printf("pc = %#010x\n", con.cpu.PC())
		return false, nil

	case "quit", "q":
		return true, nil

	case "help", "h", "?":
		fmt.Println("commands: step [n], continue, break [addr], regs, mem <addr> [count], pc, quit")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
}

func (con *Console) step(n int) error {
	for i := 0; i < n; i++ {
		exit, err := con.cpu.Step()
		if err != nil {
			return err
		}
		if exit != nil {
			fmt.Printf("program exited with code %d\n", exit.Code)
			return nil
		}
	}
	return nil
}

func (con *Console) continueUntilBreak() error {
	for {
		if con.breakpoint != nil && con.cpu.PC() == *con.breakpoint {
			fmt.Printf("hit breakpoint at %#x\n", *con.breakpoint)
			return nil
		}
		exit, err := con.cpu.Step()
		if err != nil {
			return err
		}
		if exit != nil {
			fmt.Printf("program exited with code %d\n", exit.Code)
			return nil
		}
	}
}

func (con *Console) printRegs() {
	names := []string{
		"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
		"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
		"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
		"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
	}
	var row strings.Builder
	for i, name := range names {
		row.Reset()
		hex.FormatWord(&row, []uint32{con.cpu.Reg(uint8(i))})
		fmt.Printf("%-4s x%-2d = %s", name, i, strings.TrimSpace(row.String()))
		if i%4 == 3 {
			fmt.Println()
		} else {
			fmt.Print("  ")
		}
	}
	var pc strings.Builder
	hex.FormatWord(&pc, []uint32{con.cpu.PC()})
	fmt.Printf("pc = %s  mode = %v\n", strings.TrimSpace(pc.String()), con.cpu.Mode())
}

// dumpMem reads count words starting at addr through the bus and prints
// them as a hex dump, one line of up to eight words, via hex.FormatWord.
func (con *Console) dumpMem(addr uint32, count int) error {
	const wordsPerLine = 8
	words := make([]uint32, 0, wordsPerLine)
	var line strings.Builder
	for i := 0; i < count; i++ {
		v, err := con.cpu.PeekBus(addr+uint32(i)*4, 4)
		if err != nil {
			return fmt.Errorf("mem: %w", err)
		}
		words = append(words, v)
		if len(words) == wordsPerLine || i == count-1 {
			line.Reset()
			hex.FormatWord(&line, words)
			fmt.Printf("%#010x:  %s\n", addr+uint32(i+1-len(words))*4, strings.TrimSpace(line.String()))
			words = words[:0]
		}
	}
	return nil
}
