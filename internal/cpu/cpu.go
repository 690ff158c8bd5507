/*
 * rv32ima - CPU: architectural state, fetch/decode/execute loop.
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

// Package cpu implements the hart: register file, program counter,
// privilege mode, CSR file, reservation set, and the fetch/decode/execute
// step that binds them together with the CLINT and the trap state
// machine. Concurrency model: strictly single-threaded, per spec.md §5 —
// Step must never be called from more than one goroutine concurrently.
package cpu

import (
	"github.com/rcornwell/rv32ima/internal/bus"
	"github.com/rcornwell/rv32ima/internal/clint"
	"github.com/rcornwell/rv32ima/internal/csr"
	"github.com/rcornwell/rv32ima/internal/decoder"
	"github.com/rcornwell/rv32ima/internal/trapcause"
)

// Mode is the hart's current privilege level.
type Mode uint32

const (
	ModeUser    Mode = 0
	ModeMachine Mode = 3
)

// ramBase is the reset program counter, per spec.md §3.
const ramBase uint32 = 0x8000_0000

// ExitRequest is returned by Step when the test-harness hook (ecall with
// a7==93) fires, modelling the riscv-tests termination convention.
// It is not an architectural trap and never enters the trap machinery.
type ExitRequest struct {
	Code uint32
}

func (e ExitRequest) Error() string { return "test-harness exit requested" }

// CPU is the hart: its registers, PC, privilege mode, CSR file, atomic
// reservation set, and the bus it executes against.
type CPU struct {
	regs        regFile
	pc          uint32
	mode        Mode
	csr         *csr.File
	bus         *bus.Bus
	clint       *clint.CLINT
	reservation map[uint32]struct{}
}

// New returns a CPU reset to its architectural initial state: PC at RAM
// base, Machine mode, zeroed registers, and a freshly initialized CSR
// file (spec.md §3).
func New(b *bus.Bus, cl *clint.CLINT) *CPU {
	return &CPU{
		pc:          ramBase,
		mode:        ModeMachine,
		csr:         csr.New(),
		bus:         b,
		clint:       cl,
		reservation: make(map[uint32]struct{}),
	}
}

// PC returns the current program counter.
func (c *CPU) PC() uint32 { return c.pc }

// SetPC sets the program counter, used by the loader to seed the reset
// vector when booting something other than RAM base (not needed by the
// default contract, but kept for test harnesses).
func (c *CPU) SetPC(pc uint32) { c.pc = pc }

// Mode returns the hart's current privilege mode.
func (c *CPU) Mode() Mode { return c.mode }

// Reg returns the value of register i (0..31).
func (c *CPU) Reg(i uint8) uint32 { return c.regs.read(i) }

// SetReg sets register i (0..31); writes to x0 are ignored.
func (c *CPU) SetReg(i uint8, v uint32) { c.regs.write(i, v) }

// CSR exposes the CSR file, for the loader/console/tests.
func (c *CPU) CSR() *csr.File { return c.csr }

// PeekBus reads width bytes at addr through the bus, for the console's mem
// command. It is a plain Load: it does not affect architectural state any
// differently than an instruction fetch or load would have.
func (c *CPU) PeekBus(addr, width uint32) (uint32, error) {
	return c.bus.Load(addr, width)
}

// Step executes exactly one architectural step: tick the CLINT, check for
// a pending timer interrupt, and otherwise fetch-decode-execute one
// instruction. It returns a non-nil ExitRequest only when the test-harness
// hook fires; all architectural faults are absorbed into trap entry and
// never surface as a Go error, per spec.md §7.
func (c *CPU) Step() (*ExitRequest, error) {
	if c.clint.Tick() {
		c.csr.SetMTIP(true)
	} else {
		c.csr.SetMTIP(false)
	}

	if c.csr.PendingTimerInterrupt() {
		c.enterTrap(trapcause.Trap{Cause: trapcause.TimerInterrupt}, c.pc)
		return nil, nil
	}

	fetchPC := c.pc
	raw, err := c.bus.Load(c.pc, 4)
	if err != nil {
		cause := trapcause.InstructionAccessFault
		if err == bus.ErrAddressMisaligned {
			cause = trapcause.InstructionAddressMisaligned
		}
		c.enterTrap(trapcause.Trap{Cause: cause, Tval: fetchPC}, fetchPC)
		return nil, nil
	}

	inst := decoder.Decode(raw)

	exit, trap := c.execute(inst, fetchPC)
	if exit != nil {
		return exit, nil
	}
	if trap != nil {
		c.enterTrap(*trap, fetchPC)
		return nil, nil
	}

	c.pc += 4
	return nil, nil
}
