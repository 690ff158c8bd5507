/*
 * rv32ima - Architectural exception and interrupt cause codes.
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

// Package trapcause holds the single sum of architectural trap causes: the
// synchronous exceptions raised by fetch/decode/execute and the one
// modelled interrupt (the CLINT timer). mcause is written with the Cause
// value itself; the
// interrupt bit (1<<31) is already folded into TimerInterrupt's value.
package trapcause

// Cause identifies why the hart entered a trap.
type Cause uint32

// Exception and interrupt codes, written verbatim to mcause.
const (
	InstructionAddressMisaligned Cause = 0
	InstructionAccessFault       Cause = 1
	IllegalInstruction           Cause = 2
	Breakpoint                   Cause = 3
	LoadAddressMisaligned        Cause = 4
	LoadAccessFault              Cause = 5
	StoreAddressMisaligned       Cause = 6
	StoreAccessFault             Cause = 7
	EnvironmentCallU             Cause = 8
	EnvironmentCallM             Cause = 11

	// TimerInterrupt is the lone modelled interrupt. The high bit marks it
	// as an interrupt per the mcause encoding; there is no PLIC, so it is
	// the only cause with that bit ever set.
	TimerInterrupt Cause = 0x8000_0007
)

// IsInterrupt reports whether c is the interrupt encoding rather than a
// synchronous exception.
func (c Cause) IsInterrupt() bool {
	return c&0x8000_0000 != 0
}

// Trap bundles a cause with the faulting datum mtval records for it: the
// faulting address for memory exceptions, the raw instruction word for
// IllegalInstruction, zero otherwise.
type Trap struct {
	Cause Cause
	Tval  uint32
}

func (t Trap) Error() string {
	return trapName(t.Cause)
}

func trapName(c Cause) string {
	switch c {
	case InstructionAddressMisaligned:
		return "instruction address misaligned"
	case InstructionAccessFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadAddressMisaligned:
		return "load address misaligned"
	case LoadAccessFault:
		return "load access fault"
	case StoreAddressMisaligned:
		return "store address misaligned"
	case StoreAccessFault:
		return "store access fault"
	case EnvironmentCallU:
		return "environment call from U-mode"
	case EnvironmentCallM:
		return "environment call from M-mode"
	case TimerInterrupt:
		return "timer interrupt"
	default:
		return "unknown trap cause"
	}
}
