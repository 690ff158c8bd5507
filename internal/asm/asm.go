/*
 * rv32ima - Disassembler: renders a decoded instruction as RV32I/M/A
 * assembly text.
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

// Package asm renders decoded instructions as assembly text, for the
// -disasm CLI flag. It does not assemble
// text back to machine code; spec.md's scope is the interpreter, not a
// toolchain.
package asm

import (
	"fmt"

	"github.com/rcornwell/rv32ima/internal/decoder"
)

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var mnemonics = map[decoder.Op]string{
	decoder.OpAddi: "addi", decoder.OpXori: "xori", decoder.OpOri: "ori",
	decoder.OpAndi: "andi", decoder.OpSlli: "slli", decoder.OpSrli: "srli",
	decoder.OpSrai: "srai", decoder.OpSlti: "slti", decoder.OpSltiu: "sltiu",
	decoder.OpAdd: "add", decoder.OpSub: "sub", decoder.OpXor: "xor",
	decoder.OpOr: "or", decoder.OpAnd: "and", decoder.OpSll: "sll",
	decoder.OpSrl: "srl", decoder.OpSra: "sra", decoder.OpSlt: "slt",
	decoder.OpSltu: "sltu",
	decoder.OpLb:   "lb", decoder.OpLh: "lh", decoder.OpLw: "lw",
	decoder.OpLbu:  "lbu", decoder.OpLhu: "lhu",
	decoder.OpSb:   "sb", decoder.OpSh: "sh", decoder.OpSw: "sw",
	decoder.OpBeq:  "beq", decoder.OpBne: "bne", decoder.OpBlt: "blt",
	decoder.OpBge:  "bge", decoder.OpBltu: "bltu", decoder.OpBgeu: "bgeu",
	decoder.OpLui:   "lui", decoder.OpAuipc: "auipc",
	decoder.OpJal:   "jal", decoder.OpJalr: "jalr",
	decoder.OpEcall: "ecall", decoder.OpEbreak: "ebreak", decoder.OpMret: "mret",
	decoder.OpSret:  "sret", decoder.OpFence: "fence", decoder.OpFenceI: "fence.i",
	decoder.OpWfi:   "wfi",
	decoder.OpCsrrw: "csrrw", decoder.OpCsrrs: "csrrs", decoder.OpCsrrc: "csrrc",
	decoder.OpCsrrwi: "csrrwi", decoder.OpCsrrsi: "csrrsi", decoder.OpCsrrci: "csrrci",
	decoder.OpMul: "mul", decoder.OpMulh: "mulh", decoder.OpMulhsu: "mulhsu",
	decoder.OpMulhu: "mulhu", decoder.OpDiv: "div", decoder.OpDivu: "divu",
	decoder.OpRem:   "rem", decoder.OpRemu: "remu",
	decoder.OpLrW: "lr.w", decoder.OpScW: "sc.w",
	decoder.OpAmoswapW: "amoswap.w", decoder.OpAmoaddW: "amoadd.w",
	decoder.OpAmoxorW:  "amoxor.w", decoder.OpAmoandW: "amoand.w",
	decoder.OpAmoorW:   "amoor.w", decoder.OpAmominW: "amomin.w",
	decoder.OpAmomaxW:  "amomax.w", decoder.OpAmominuW: "amominu.w",
	decoder.OpAmomaxuW: "amomaxu.w",
}

func reg(i uint8) string { return regNames[i] }

// Disassemble renders the decoded instruction at pc as assembly text, in
// the mnemonic's natural operand order. Unknown/illegal instructions
// render as a raw-hex ".word" directive.
func Disassemble(pc uint32, inst decoder.Instruction) string {
	name, ok := mnemonics[inst.Op]
	if !ok {
		return fmt.Sprintf(".word 0x%08x", inst.Raw)
	}

	switch inst.Shape {
	case decoder.ShapeR:
		switch inst.Op {
		case decoder.OpLrW:
			return fmt.Sprintf("%s %s, (%s)", name, reg(inst.Rd), reg(inst.Rs1))
		case decoder.OpScW, decoder.OpAmoswapW, decoder.OpAmoaddW, decoder.OpAmoxorW,
			decoder.OpAmoandW, decoder.OpAmoorW, decoder.OpAmominW, decoder.OpAmomaxW,
			decoder.OpAmominuW, decoder.OpAmomaxuW:
			return fmt.Sprintf("%s %s, %s, (%s)", name, reg(inst.Rd), reg(inst.Rs2), reg(inst.Rs1))
		default:
			return fmt.Sprintf("%s %s, %s, %s", name, reg(inst.Rd), reg(inst.Rs1), reg(inst.Rs2))
		}

	case decoder.ShapeI:
		switch inst.Op {
		case decoder.OpEcall, decoder.OpEbreak, decoder.OpMret, decoder.OpSret,
			decoder.OpFence, decoder.OpFenceI, decoder.OpWfi:
			return name
		case decoder.OpJalr:
			return fmt.Sprintf("%s %s, %d(%s)", name, reg(inst.Rd), inst.Imm, reg(inst.Rs1))
		case decoder.OpLb, decoder.OpLh, decoder.OpLw, decoder.OpLbu, decoder.OpLhu:
			return fmt.Sprintf("%s %s, %d(%s)", name, reg(inst.Rd), inst.Imm, reg(inst.Rs1))
		case decoder.OpCsrrw, decoder.OpCsrrs, decoder.OpCsrrc:
			return fmt.Sprintf("%s %s, %#x, %s", name, reg(inst.Rd), inst.Csr, reg(inst.Rs1))
		case decoder.OpCsrrwi, decoder.OpCsrrsi, decoder.OpCsrrci:
			return fmt.Sprintf("%s %s, %#x, %d", name, reg(inst.Rd), inst.Csr, inst.CsrImm)
		default:
			return fmt.Sprintf("%s %s, %s, %d", name, reg(inst.Rd), reg(inst.Rs1), inst.Imm)
		}

	case decoder.ShapeS:
		return fmt.Sprintf("%s %s, %d(%s)", name, reg(inst.Rs2), inst.Imm, reg(inst.Rs1))

	case decoder.ShapeB:
		return fmt.Sprintf("%s %s, %s, %#x", name, reg(inst.Rs1), reg(inst.Rs2), pc+uint32(inst.Imm))

	case decoder.ShapeU:
		return fmt.Sprintf("%s %s, %#x", name, reg(inst.Rd), uint32(inst.Imm)>>12)

	case decoder.ShapeJ:
		return fmt.Sprintf("%s %s, %#x", name, reg(inst.Rd), pc+uint32(inst.Imm))
	}
	return fmt.Sprintf(".word 0x%08x", inst.Raw)
}
