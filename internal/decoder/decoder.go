/*
 * rv32ima - Instruction decoder: raw word to tagged decoded record.
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

// Package decoder turns a raw 32-bit RV32IMA_Zicsr_Zifencei instruction
// word into a tagged Instruction carrying pre-extracted register indices
// and a sign-extended immediate. Decode never fails on well-formed input:
// unrecognized encodings decode to Op == IllegalInstruction, carrying the
// raw word so the caller can raise it as mtval.
package decoder

// Shape classifies which fields an Instruction carries, per spec.md §4.2.
type Shape uint8

const (
	ShapeR Shape = iota
	ShapeI
	ShapeS
	ShapeB
	ShapeU
	ShapeJ
)

// Op enumerates every decoded operation, including the pseudo-op
// IllegalInstruction for any encoding the decoder does not recognize.
type Op uint8

const (
	IllegalInstruction Op = iota

	// I-type arithmetic.
	OpAddi
	OpXori
	OpOri
	OpAndi
	OpSlli
	OpSrli
	OpSrai
	OpSlti
	OpSltiu

	// R-type arithmetic.
	OpAdd
	OpSub
	OpXor
	OpOr
	OpAnd
	OpSll
	OpSrl
	OpSra
	OpSlt
	OpSltu

	// Loads.
	OpLb
	OpLh
	OpLw
	OpLbu
	OpLhu

	// Stores.
	OpSb
	OpSh
	OpSw

	// Branches.
	OpBeq
	OpBne
	OpBlt
	OpBge
	OpBltu
	OpBgeu

	// U/J-type.
	OpLui
	OpAuipc
	OpJal
	OpJalr

	// System.
	OpEcall
	OpEbreak
	OpMret
	OpSret
	OpFence
	OpFenceI
	OpWfi

	// Zicsr.
	OpCsrrw
	OpCsrrs
	OpCsrrc
	OpCsrrwi
	OpCsrrsi
	OpCsrrci

	// M-extension.
	OpMul
	OpMulh
	OpMulhsu
	OpMulhu
	OpDiv
	OpDivu
	OpRem
	OpRemu

	// A-extension (word width only).
	OpLrW
	OpScW
	OpAmoswapW
	OpAmoaddW
	OpAmoxorW
	OpAmoandW
	OpAmoorW
	OpAmominW
	OpAmomaxW
	OpAmominuW
	OpAmomaxuW
)

// Instruction is the tagged decode result. Only the fields relevant to its
// Shape are meaningful; the others are zero.
type Instruction struct {
	Raw    uint32
	Shape  Shape
	Op     Op
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Imm    int32
	CsrImm uint32 // zero-extended 5-bit immediate for csrrwi/si/ci
	Csr    uint32 // CSR address for Zicsr ops
}

// Major opcodes (bits 6:0).
const (
	opLoad    = 0b0000011
	opMiscMem = 0b0001111
	opOpImm   = 0b0010011
	opAuipc   = 0b0010111
	opStore   = 0b0100011
	opAmo     = 0b0101111
	opOp      = 0b0110011
	opLui     = 0b0110111
	opBranch  = 0b1100011
	opJalr    = 0b1100111
	opJal     = 0b1101111
	opSystem  = 0b1110011
)

func bits(w uint32, hi, lo uint) uint32 {
	return (w >> lo) & ((1 << (hi - lo + 1)) - 1)
}

func signExtend(v uint32, bit uint) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}

// Decode decodes a raw instruction word.
func Decode(raw uint32) Instruction {
	opcode := raw & 0x7f
	funct3 := bits(raw, 14, 12)
	funct7 := bits(raw, 31, 25)
	rd := uint8(bits(raw, 11, 7))
	rs1 := uint8(bits(raw, 19, 15))
	rs2 := uint8(bits(raw, 24, 20))

	switch opcode {
	case opLui:
		return Instruction{Raw: raw, Shape: ShapeU, Op: OpLui, Rd: rd, Imm: int32(raw & 0xFFFFF000)}

	case opAuipc:
		return Instruction{Raw: raw, Shape: ShapeU, Op: OpAuipc, Rd: rd, Imm: int32(raw & 0xFFFFF000)}

	case opJal:
		imm := (bits(raw, 31, 31) << 20) | (bits(raw, 19, 12) << 12) |
			(bits(raw, 20, 20) << 11) | (bits(raw, 30, 21) << 1)
		return Instruction{Raw: raw, Shape: ShapeJ, Op: OpJal, Rd: rd, Imm: signExtend(imm, 20)}

	case opJalr:
		if funct3 != 0 {
			return illegal(raw)
		}
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpJalr, Rd: rd, Rs1: rs1, Imm: signExtend(bits(raw, 31, 20), 11)}

	case opBranch:
		imm := (bits(raw, 31, 31) << 12) | (bits(raw, 7, 7) << 11) |
			(bits(raw, 30, 25) << 5) | (bits(raw, 11, 8) << 1)
		op, ok := branchOp(funct3)
		if !ok {
			return illegal(raw)
		}
		return Instruction{Raw: raw, Shape: ShapeB, Op: op, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 12)}

	case opLoad:
		op, ok := loadOp(funct3)
		if !ok {
			return illegal(raw)
		}
		return Instruction{Raw: raw, Shape: ShapeI, Op: op, Rd: rd, Rs1: rs1, Imm: signExtend(bits(raw, 31, 20), 11)}

	case opStore:
		imm := (bits(raw, 31, 25) << 5) | bits(raw, 11, 7)
		op, ok := storeOp(funct3)
		if !ok {
			return illegal(raw)
		}
		return Instruction{Raw: raw, Shape: ShapeS, Op: op, Rs1: rs1, Rs2: rs2, Imm: signExtend(imm, 11)}

	case opOpImm:
		return decodeOpImm(raw, funct3, funct7, rd, rs1)

	case opOp:
		return decodeOp(raw, funct3, funct7, rd, rs1, rs2)

	case opMiscMem:
		switch funct3 {
		case 0b000:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpFence}
		case 0b001:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpFenceI}
		default:
			return illegal(raw)
		}

	case opSystem:
		return decodeSystem(raw, funct3, rd, rs1, rs2)

	case opAmo:
		return decodeAmo(raw, funct3, funct7, rd, rs1, rs2)

	default:
		return illegal(raw)
	}
}

func illegal(raw uint32) Instruction {
	return Instruction{Raw: raw, Op: IllegalInstruction}
}

func branchOp(funct3 uint32) (Op, bool) {
	switch funct3 {
	case 0b000:
		return OpBeq, true
	case 0b001:
		return OpBne, true
	case 0b100:
		return OpBlt, true
	case 0b101:
		return OpBge, true
	case 0b110:
		return OpBltu, true
	case 0b111:
		return OpBgeu, true
	default:
		return IllegalInstruction, false
	}
}

func loadOp(funct3 uint32) (Op, bool) {
	switch funct3 {
	case 0b000:
		return OpLb, true
	case 0b001:
		return OpLh, true
	case 0b010:
		return OpLw, true
	case 0b100:
		return OpLbu, true
	case 0b101:
		return OpLhu, true
	default:
		return IllegalInstruction, false
	}
}

func storeOp(funct3 uint32) (Op, bool) {
	switch funct3 {
	case 0b000:
		return OpSb, true
	case 0b001:
		return OpSh, true
	case 0b010:
		return OpSw, true
	default:
		return IllegalInstruction, false
	}
}

func decodeOpImm(raw uint32, funct3, funct7 uint32, rd, rs1 uint8) Instruction {
	imm := signExtend(bits(raw, 31, 20), 11)
	shamt := bits(raw, 24, 20)

	switch funct3 {
	case 0b000:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpAddi, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b100:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpXori, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b110:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpOri, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b111:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpAndi, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b010:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpSlti, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b011:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpSltiu, Rd: rd, Rs1: rs1, Imm: imm}
	case 0b001:
		if funct7 != 0 {
			return illegal(raw)
		}
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpSlli, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
	case 0b101:
		switch funct7 {
		case 0b0000000:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpSrli, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
		case 0b0100000:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpSrai, Rd: rd, Rs1: rs1, Imm: int32(shamt)}
		default:
			return illegal(raw)
		}
	default:
		return illegal(raw)
	}
}

func decodeOp(raw uint32, funct3, funct7 uint32, rd, rs1, rs2 uint8) Instruction {
	base := Instruction{Raw: raw, Shape: ShapeR, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch funct7 {
	case 0b0000001: // M extension
		switch funct3 {
		case 0b000:
			base.Op = OpMul
		case 0b001:
			base.Op = OpMulh
		case 0b010:
			base.Op = OpMulhsu
		case 0b011:
			base.Op = OpMulhu
		case 0b100:
			base.Op = OpDiv
		case 0b101:
			base.Op = OpDivu
		case 0b110:
			base.Op = OpRem
		case 0b111:
			base.Op = OpRemu
		default:
			return illegal(raw)
		}
		return base

	case 0b0000000:
		switch funct3 {
		case 0b000:
			base.Op = OpAdd
		case 0b001:
			base.Op = OpSll
		case 0b010:
			base.Op = OpSlt
		case 0b011:
			base.Op = OpSltu
		case 0b100:
			base.Op = OpXor
		case 0b101:
			base.Op = OpSrl
		case 0b110:
			base.Op = OpOr
		case 0b111:
			base.Op = OpAnd
		default:
			return illegal(raw)
		}
		return base

	case 0b0100000:
		switch funct3 {
		case 0b000:
			base.Op = OpSub
		case 0b101:
			base.Op = OpSra
		default:
			return illegal(raw)
		}
		return base

	default:
		return illegal(raw)
	}
}

func decodeSystem(raw uint32, funct3 uint32, rd, rs1, rs2 uint8) Instruction {
	if funct3 == 0 {
		imm12 := bits(raw, 31, 20)
		switch imm12 {
		case 0x000:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpEcall}
		case 0x001:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpEbreak}
		case 0x302:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpMret}
		case 0x102:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpSret}
		case 0x105:
			return Instruction{Raw: raw, Shape: ShapeI, Op: OpWfi}
		default:
			return illegal(raw)
		}
	}

	csr := bits(raw, 31, 20)
	switch funct3 {
	case 0b001:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrw, Rd: rd, Rs1: rs1, Csr: csr}
	case 0b010:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrs, Rd: rd, Rs1: rs1, Csr: csr}
	case 0b011:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrc, Rd: rd, Rs1: rs1, Csr: csr}
	case 0b101:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrwi, Rd: rd, CsrImm: uint32(rs1), Csr: csr}
	case 0b110:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrsi, Rd: rd, CsrImm: uint32(rs1), Csr: csr}
	case 0b111:
		return Instruction{Raw: raw, Shape: ShapeI, Op: OpCsrrci, Rd: rd, CsrImm: uint32(rs1), Csr: csr}
	default:
		return illegal(raw)
	}
}

func decodeAmo(raw uint32, funct3, funct7 uint32, rd, rs1, rs2 uint8) Instruction {
	if funct3 != 0b010 { // word width only
		return illegal(raw)
	}
	base := Instruction{Raw: raw, Shape: ShapeR, Rd: rd, Rs1: rs1, Rs2: rs2}

	switch funct7 >> 2 {
	case 0b00010:
		base.Op = OpLrW
	case 0b00011:
		base.Op = OpScW
	case 0b00001:
		base.Op = OpAmoswapW
	case 0b00000:
		base.Op = OpAmoaddW
	case 0b00100:
		base.Op = OpAmoxorW
	case 0b01100:
		base.Op = OpAmoandW
	case 0b01000:
		base.Op = OpAmoorW
	case 0b10000:
		base.Op = OpAmominW
	case 0b10100:
		base.Op = OpAmomaxW
	case 0b11000:
		base.Op = OpAmominuW
	case 0b11100:
		base.Op = OpAmomaxuW
	default:
		return illegal(raw)
	}
	return base
}
