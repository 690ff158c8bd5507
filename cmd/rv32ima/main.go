/*
 * rv32ima - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rv32ima/config/configparser"
	"github.com/rcornwell/rv32ima/internal/asm"
	"github.com/rcornwell/rv32ima/internal/bus"
	"github.com/rcornwell/rv32ima/internal/clint"
	"github.com/rcornwell/rv32ima/internal/console"
	"github.com/rcornwell/rv32ima/internal/cpu"
	"github.com/rcornwell/rv32ima/internal/decoder"
	"github.com/rcornwell/rv32ima/internal/loader"
	"github.com/rcornwell/rv32ima/internal/ram"
	"github.com/rcornwell/rv32ima/internal/uart"
	"github.com/rcornwell/rv32ima/util/logger"
)

var log *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Board configuration file")
	optKernel := getopt.StringLong("kernel", 'k', "", "Kernel image to load (raw or ELF32)")
	optDTB := getopt.StringLong("dtb", 'd', "", "Device tree blob to load")
	optRAM := getopt.StringLong("ram", 'm', "", "RAM size (e.g. 64M), overrides config")
	optSleep := getopt.StringLong("sleep", 0, "", "Microseconds to sleep between steps")
	optInteractive := getopt.BoolLong("interactive", 'i', "Start the interactive console instead of free-running")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 0, "Echo log records to stderr")
	optDisasm := getopt.BoolLong("disasm", 0, "Disassemble the loaded kernel instead of running it")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var out io.Writer
	if *optLogFile != "" {
		file, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "rv32ima: create log file:", err)
			os.Exit(1)
		}
		out = file
	}
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	debug := *optDebug
	log = slog.New(logger.NewHandler(out, &slog.HandlerOptions{Level: level}, &debug))
	slog.SetDefault(log)

	board := configparser.Default()
	if *optConfig != "" {
		var err error
		board, err = configparser.Load(*optConfig, board)
		if err != nil {
			log.Error("loading configuration", "error", err)
			os.Exit(1)
		}
	}
	if *optKernel != "" {
		board.KernelPath = *optKernel
	}
	if *optDTB != "" {
		board.DTBPath = *optDTB
	}
	if *optRAM != "" {
		if size, err := parseRAMFlag(*optRAM); err == nil {
			board.RAMSize = size
		} else {
			log.Error("parsing -ram", "error", err)
			os.Exit(1)
		}
	}
	if *optSleep != "" {
		var micros uint32
		if _, err := fmt.Sscanf(*optSleep, "%d", &micros); err != nil {
			log.Error("parsing -sleep", "error", err)
			os.Exit(1)
		}
		board.SleepMicros = micros
	}
	if *optInteractive {
		board.Interactive = true
	}

	if board.KernelPath == "" {
		log.Error("no kernel image given (-kernel or config's kernel setting)")
		os.Exit(1)
	}

	log.Info("rv32ima starting", "ram", board.RAMSize, "kernel", board.KernelPath)

	mem := ram.New(board.RAMSize)
	u := uart.New(os.Stdout)
	cl := clint.New()
	b := bus.New(mem, u, cl)
	hart := cpu.New(b, cl)

	img, err := loader.LoadKernel(board.KernelPath, mem)
	if err != nil {
		log.Error("loading kernel", "error", err)
		os.Exit(1)
	}
	hart.SetPC(img.EntryPC)

	if board.DTBPath != "" {
		dtbAddr, err := loader.LoadDTB(board.DTBPath, mem)
		if err != nil {
			log.Error("loading dtb", "error", err)
			os.Exit(1)
		}
		hart.SetReg(10, 0)
		hart.SetReg(11, dtbAddr)
	}

	if *optDisasm {
		disassemble(mem, img.EntryPC)
		return
	}

	if board.Interactive {
		con := console.New(hart)
		if err := con.Run(); err != nil {
			log.Error("console", "error", err)
			os.Exit(1)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sleep := time.Duration(board.SleepMicros) * time.Microsecond
	exitCode := run(hart, sigChan, sleep)
	log.Info("rv32ima stopped", "exit_code", exitCode)
	os.Exit(int(exitCode))
}

// run drives the hart's step loop until it exits, it traps and there is
// nowhere architecturally useful left to go... in practice the only stop
// conditions are the test-harness exit hook or an operator interrupt.
func run(hart *cpu.CPU, sigChan <-chan os.Signal, sleep time.Duration) uint32 {
	for {
		select {
		case <-sigChan:
			fmt.Println("rv32ima: interrupted")
			return 130
		default:
		}

		exit, err := hart.Step()
		if err != nil {
			log.Error("step", "error", err)
			return 1
		}
		if exit != nil {
			return exit.Code
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// disassemble prints every word in mem, starting at entry, as assembly
// text, until the end of RAM.
func disassemble(mem *ram.RAM, entry uint32) {
	offset := entry - ram.Base
	for offset+4 <= mem.Size() {
		raw := mem.Load(offset, 4)
		inst := decoder.Decode(raw)
		fmt.Printf("%#010x:  %08x  %s\n", ram.Base+offset, raw, asm.Disassemble(ram.Base+offset, inst))
		offset += 4
	}
}

// parseRAMFlag accepts a bare byte count or one with a K/M/G suffix, the
// same grammar configparser.Load accepts for the "ram" setting.
func parseRAMFlag(s string) (uint32, error) {
	mult := uint64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	var n uint64
	if _, err := fmt.Sscanf(s, "%v", &n); err != nil {
		return 0, fmt.Errorf("invalid RAM size %q: %w", s, err)
	}
	return uint32(n * mult), nil
}
