/*
 * rv32ima - CPU end-to-end tests.
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

package cpu

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rcornwell/rv32ima/internal/bus"
	"github.com/rcornwell/rv32ima/internal/clint"
	"github.com/rcornwell/rv32ima/internal/csr"
	"github.com/rcornwell/rv32ima/internal/decoder"
	"github.com/rcornwell/rv32ima/internal/ram"
	"github.com/rcornwell/rv32ima/internal/trapcause"
	"github.com/rcornwell/rv32ima/internal/uart"
)

// harness wires a CPU to a RAM+UART+CLINT bus for tests, mirroring the
// component table in spec.md §2.
type harness struct {
	cpu *CPU
	ram *ram.RAM
	out *bytes.Buffer
}

func newHarness(t *testing.T, program []uint32) *harness {
	t.Helper()
	r := ram.New(4096)
	for i, w := range program {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], w)
		r.WriteAt(uint32(i*4), b[:])
	}
	out := &bytes.Buffer{}
	u := uart.New(out)
	cl := clint.New()
	b := bus.New(r, u, cl)
	return &harness{cpu: New(b, cl), ram: r, out: out}
}

func (h *harness) run(t *testing.T, maxSteps int) *ExitRequest {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		exit, err := h.cpu.Step()
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if exit != nil {
			return exit
		}
	}
	t.Fatalf("program did not exit within %d steps", maxSteps)
	return nil
}

// encR encodes an R-type instruction.
func encR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encI encodes an I-type instruction.
func encI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encS encodes an S-type instruction (used for sb/sh/sw).
func encS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	lo := uint32(imm) & 0x1f
	hi := (uint32(imm) >> 5) & 0x7f
	return hi<<25 | rs2<<20 | rs1<<15 | funct3<<12 | lo<<7 | opcode
}

const (
	opOpImm = 0b0010011
	opOp    = 0b0110011
	opLui   = 0b0110111
	opStore = 0b0100011
	opSys   = 0b1110011
)

func addi(rd, rs1 uint32, imm int32) uint32 { return encI(opOpImm, 0, rd, rs1, imm) }
func add(rd, rs1, rs2 uint32) uint32        { return encR(opOp, 0, 0, rd, rs1, rs2) }
func lui(rd uint32, imm uint32) uint32      { return imm<<12 | rd<<7 | opLui }
func sb(rs1, rs2 uint32, imm int32) uint32  { return encS(opStore, 0, rs1, rs2, imm) }
func srai(rd, rs1 uint32, shamt uint32) uint32 {
	return encR(opOpImm, 5, 0b0100000, rd, rs1, shamt)
}
func ecall() uint32 { return encI(opSys, 0, 0, 0, 0) }

// TestDecodeAddScenario verifies spec.md §8 scenario 1: 0x007302b3 decodes
// to an R-type add.
func TestDecodeAddScenario(t *testing.T) {
	const raw uint32 = 0x007302b3
	if raw&0x7f != opOp {
		t.Fatalf("opcode bits = %#x, want opOp", raw&0x7f)
	}
	inst := decoder.Decode(raw)
	if inst.Op != decoder.OpAdd || inst.Shape != decoder.ShapeR || inst.Rd != 5 || inst.Rs1 != 6 || inst.Rs2 != 7 {
		t.Fatalf("Decode(%#x) = op %v rd %d rs1 %d rs2 %d, want R-type add x5, x6, x7", raw, inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	}
}

// TestLuiSraiProgram runs: lui x1, 0x80000; srai x1, x1, 31 and checks the
// arithmetic right shift sign-extends the top bit across the whole word.
func TestLuiSraiProgram(t *testing.T) {
	h := newHarness(t, []uint32{
		lui(1, 0x80000),
		srai(1, 1, 31),
		addi(17, 0, 93),
		add(10, 1, 0),
		ecall(),
	})
	exit := h.run(t, 10)
	if exit.Code != 0xFFFFFFFF {
		t.Fatalf("a0 = %#x, want 0xffffffff", exit.Code)
	}
}

// TestLuiLuiProgram runs two independent lui loads and an add, checking
// basic U-type immediate placement and register independence.
func TestLuiLuiProgram(t *testing.T) {
	h := newHarness(t, []uint32{
		lui(1, 0x12345),
		lui(2, 0x6789a),
		add(3, 1, 2),
		addi(17, 0, 93),
		add(10, 3, 0),
		ecall(),
	})
	exit := h.run(t, 10)
	want := uint32(0x12345000) + uint32(0x6789a000)
	if exit.Code != want {
		t.Fatalf("a0 = %#x, want %#x", exit.Code, want)
	}
}

// TestLiAddiProgram runs: addi x1, x0, 5; addi x1, x1, 37 and checks plain
// accumulation through an I-type immediate.
func TestLiAddiProgram(t *testing.T) {
	h := newHarness(t, []uint32{
		addi(1, 0, 5),
		addi(1, 1, 37),
		addi(17, 0, 93),
		add(10, 1, 0),
		ecall(),
	})
	exit := h.run(t, 10)
	if exit.Code != 42 {
		t.Fatalf("a0 = %d, want 42", exit.Code)
	}
}

// TestLiLiAddProgram runs: addi x1, x0, 100; addi x2, x0, 23; add x3, x1, x2.
func TestLiLiAddProgram(t *testing.T) {
	h := newHarness(t, []uint32{
		addi(1, 0, 100),
		addi(2, 0, 23),
		add(3, 1, 2),
		addi(17, 0, 93),
		add(10, 3, 0),
		ecall(),
	})
	exit := h.run(t, 10)
	if exit.Code != 123 {
		t.Fatalf("a0 = %d, want 123", exit.Code)
	}
}

// TestUARTExactBytes verifies the UART sink reproduces exactly the bytes
// written to the data register, byte for byte, per spec.md's UART contract.
func TestUARTExactBytes(t *testing.T) {
	h := newHarness(t, []uint32{
		lui(5, uart.Base>>12),
		addi(6, 0, 'O'),
		sb(5, 6, 0),
		addi(6, 0, 'K'),
		sb(5, 6, 0),
		addi(6, 0, '\n'),
		sb(5, 6, 0),
		addi(17, 0, 93),
		addi(10, 0, 0),
		ecall(),
	})
	h.run(t, 20)
	if got := h.out.String(); got != "OK\n" {
		t.Fatalf("uart output = %q, want %q", got, "OK\n")
	}
}

// TestTrapEntryExitRoundTrip verifies an illegal instruction enters a trap
// at mtvec in Machine mode with MIE cleared and MPIE/MPP recording the
// prior state, and that mret restores them exactly (spec.md §4.4).
func TestTrapEntryExitRoundTrip(t *testing.T) {
	h := newHarness(t, []uint32{0, 0, 0, 0})
	c := h.cpu
	c.csr.Write(csr.Mtvec, ram.Base+0x100)
	c.csr.SetMIE(true)

	c.enterTrap(trapcause.Trap{Cause: trapcause.IllegalInstruction}, c.pc)

	if c.mode != ModeMachine {
		t.Fatalf("mode after trap = %v, want Machine", c.mode)
	}
	if c.csr.MIE() {
		t.Fatalf("MIE not cleared on trap entry")
	}
	if !c.csr.MPIE() {
		t.Fatalf("MPIE should record the pre-trap MIE=true")
	}
	if c.pc != ram.Base+0x100 {
		t.Fatalf("pc after trap = %#x, want mtvec", c.pc)
	}

	c.csr.Write(csr.Mepc, ram.Base+4)
	c.mret()
	if c.mode != ModeMachine {
		t.Fatalf("mode after mret = %v, want Machine (MPP was Machine)", c.mode)
	}
	if !c.csr.MIE() {
		t.Fatalf("MIE should be restored from MPIE after mret")
	}
	if c.pc+4 != ram.Base+4 {
		t.Fatalf("pc after mret (+4) = %#x, want mepc", c.pc+4)
	}
}

// TestDivideByZeroAndOverflow checks the M-extension special cases spec.md
// §4.3 calls out: division by zero and INT_MIN/-1 overflow.
func TestDivideByZeroAndOverflow(t *testing.T) {
	div := func(rd, rs1, rs2 uint32) uint32 { return encR(opOp, 0b100, 0b0000001, rd, rs1, rs2) }
	rem := func(rd, rs1, rs2 uint32) uint32 { return encR(opOp, 0b110, 0b0000001, rd, rs1, rs2) }

	h := newHarness(t, []uint32{
		addi(1, 0, 5),
		addi(2, 0, 0),
		div(3, 1, 2),
		rem(4, 1, 2),
		lui(5, 0x80000),
		addi(6, 0, -1),
		div(7, 5, 6),
		addi(17, 0, 93),
		add(10, 3, 0),
		ecall(),
	})
	c := h.cpu
	for {
		exit, err := c.Step()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exit != nil {
			break
		}
	}
	if v := c.Reg(3); v != 0xFFFFFFFF {
		t.Fatalf("5/0 = %#x, want all-ones", v)
	}
	if v := c.Reg(4); v != 5 {
		t.Fatalf("5%%0 = %d, want 5", v)
	}
	if v := c.Reg(7); v != 0x80000000 {
		t.Fatalf("INT_MIN/-1 = %#x, want 0x80000000", v)
	}
}

// TestLrScReservation checks that sc.w succeeds immediately after a
// matching lr.w and fails with a nonzero code otherwise (spec.md §4.3 A
// extension, single-hart trivial atomicity).
func TestLrScReservation(t *testing.T) {
	lrw := func(rd, rs1 uint32) uint32 { return encR(0b0101111, 0b010, 0b0001000, rd, rs1, 0) }
	scw := func(rd, rs1, rs2 uint32) uint32 { return encR(0b0101111, 0b010, 0b0001100, rd, rs1, rs2) }

	h := newHarness(t, []uint32{
		lui(1, ram.Base>>12),
		addi(1, 1, 0x200),
		lrw(2, 1),
		addi(3, 0, 7),
		scw(4, 1, 3),
		scw(5, 1, 3),
		addi(17, 0, 93),
		add(10, 4, 0),
		ecall(),
	})
	exit := h.run(t, 10)
	if exit.Code != 0 {
		t.Fatalf("sc.w after matching lr.w = %d, want 0 (success)", exit.Code)
	}
	if v := h.cpu.Reg(5); v == 0 {
		t.Fatalf("sc.w with no reservation = 0, want nonzero (failure)")
	}
}
