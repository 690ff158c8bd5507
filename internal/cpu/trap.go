/*
 * rv32ima - Trap-entry and trap-exit state transitions.
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
	"github.com/rcornwell/rv32ima/internal/csr"
	"github.com/rcornwell/rv32ima/internal/trapcause"
)

// enterTrap performs the trap-entry transition of spec.md §4.4: it
// records mepc/mcause/mtval, saves MIE into MPIE and clears MIE, saves
// the current mode into MPP and switches to Machine, and redirects PC to
// mtvec directly (no -4 adjustment, since the outer +4 in Step is skipped
// whenever a trap fires).
//
// epc is the PC to record in mepc: the address of the faulting
// instruction for a synchronous exception, or the address of the next
// instruction to run for an accepted interrupt (spec.md §4.4 step 2).
func (c *CPU) enterTrap(t trapcause.Trap, epc uint32) {
	c.csr.Write(csr.Mepc, epc)
	c.csr.Write(csr.Mcause, uint32(t.Cause))
	c.csr.Write(csr.Mtval, t.Tval)

	c.csr.SetMPIE(c.csr.MIE())
	c.csr.SetMIE(false)

	c.csr.SetMPP(uint32(c.mode))
	c.mode = ModeMachine

	c.pc = c.csr.Read(csr.Mtvec)
}

// mret performs the trap-exit transition of spec.md §4.4: restores MIE
// from MPIE, sets MPIE to 1, restores mode from MPP and resets MPP to
// Machine, and sets PC to mepc-4 so the outer +4 lands exactly at mepc.
func (c *CPU) mret() {
	c.csr.SetMIE(c.csr.MPIE())
	c.csr.SetMPIE(true)

	c.mode = Mode(c.csr.MPP())
	c.csr.SetMPP(uint32(ModeMachine))

	c.pc = c.csr.Read(csr.Mepc) - 4
}
