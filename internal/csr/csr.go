/*
 * rv32ima - Control and Status Register file.
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

// Package csr holds the fixed set of Machine-mode control and status
// registers this core implements, their writability, and the mstatus/mie/
// mip bit-field accessors the trap state machine needs.
package csr

// Addresses of the implemented CSRs.
const (
	Mvendorid uint32 = 0xF11
	Marchid   uint32 = 0xF12
	Mimpid    uint32 = 0xF13
	Mhartid   uint32 = 0xF14
	Rdcycle   uint32 = 0xC00
	Mstatus   uint32 = 0x300
	Misa      uint32 = 0x301
	Mie       uint32 = 0x304
	Mtvec     uint32 = 0x305
	Mscratch  uint32 = 0x340
	Mepc      uint32 = 0x341
	Mcause    uint32 = 0x342
	Mtval     uint32 = 0x343
	Mip       uint32 = 0x344
)

// mstatus field positions.
const (
	mstatusMIE     uint32 = 1 << 3
	mstatusMPIE    uint32 = 1 << 7
	mstatusMPPShift       = 11
	mstatusMPPMask uint32 = 0x3 << mstatusMPPShift
)

// mie/mip field positions.
const (
	mieMTIE uint32 = 1 << 7
	mipMTIP uint32 = 1 << 7
)

// Initial values specified by spec.md §3.
const (
	initMvendorid uint32 = 0xFF0F_F0FF
	initMisa      uint32 = 0x4040_1101
)

type reg struct {
	value    uint32
	writable bool
}

// File is the CSR address space. Addresses not present in the map read as
// zero and silently discard writes, exactly like a write to a read-only
// register.
type File struct {
	regs map[uint32]*reg
}

// New returns a CSR file with every implemented register at its
// architectural initial value.
func New() *File {
	f := &File{regs: make(map[uint32]*reg, 14)}
	f.define(Mvendorid, initMvendorid, false)
	f.define(Marchid, 0, false)
	f.define(Mimpid, 0, false)
	f.define(Mhartid, 0, false)
	f.define(Rdcycle, 0, false)
	f.define(Mstatus, 0, true)
	f.define(Misa, initMisa, true)
	f.define(Mie, 0, true)
	f.define(Mtvec, 0, true)
	f.define(Mscratch, 0, true)
	f.define(Mepc, 0, true)
	f.define(Mcause, 0, true)
	f.define(Mtval, 0, true)
	f.define(Mip, 0, true)
	return f
}

func (f *File) define(addr, value uint32, writable bool) {
	f.regs[addr] = &reg{value: value, writable: writable}
}

// Read returns the current value of addr, or zero if addr is unimplemented.
// Rdcycle additionally increments on every read, per spec.md's "incremented
// by CSR file" note.
func (f *File) Read(addr uint32) uint32 {
	r, ok := f.regs[addr]
	if !ok {
		return 0
	}
	if addr == Rdcycle {
		v := r.value
		r.value++
		return v
	}
	return r.value
}

// Write sets addr to value. Unimplemented or non-writable addresses
// silently discard the write — spec.md permits either silent-drop or an
// IllegalInstruction trap here, provided the implementation is consistent;
// this core always drops silently, matching x0's silent-drop read/write
// semantics in the register file.
func (f *File) Write(addr, value uint32) {
	r, ok := f.regs[addr]
	if !ok || !r.writable {
		return
	}
	r.value = value
}

// MIE reports mstatus.MIE, the global machine-mode interrupt enable.
func (f *File) MIE() bool {
	return f.regs[Mstatus].value&mstatusMIE != 0
}

// SetMIE sets or clears mstatus.MIE.
func (f *File) SetMIE(on bool) {
	f.setBit(Mstatus, mstatusMIE, on)
}

// MPIE reports mstatus.MPIE.
func (f *File) MPIE() bool {
	return f.regs[Mstatus].value&mstatusMPIE != 0
}

// SetMPIE sets or clears mstatus.MPIE.
func (f *File) SetMPIE(on bool) {
	f.setBit(Mstatus, mstatusMPIE, on)
}

// MPP reports mstatus.MPP (0 = User, 3 = Machine).
func (f *File) MPP() uint32 {
	return (f.regs[Mstatus].value & mstatusMPPMask) >> mstatusMPPShift
}

// SetMPP sets mstatus.MPP.
func (f *File) SetMPP(mode uint32) {
	m := f.regs[Mstatus]
	m.value = (m.value &^ mstatusMPPMask) | ((mode << mstatusMPPShift) & mstatusMPPMask)
}

// MTIE reports mie.MTIE, the machine timer interrupt enable.
func (f *File) MTIE() bool {
	return f.regs[Mie].value&mieMTIE != 0
}

// MTIP reports mip.MTIP, the machine timer interrupt pending bit.
func (f *File) MTIP() bool {
	return f.regs[Mip].value&mipMTIP != 0
}

// SetMTIP sets or clears mip.MTIP; the CLINT's tick result drives this
// every step via the CPU's pre-fetch hook.
func (f *File) SetMTIP(on bool) {
	f.setBit(Mip, mipMTIP, on)
}

// PendingTimerInterrupt reports whether a timer interrupt is pending,
// enabled, and globally enabled — the condition spec.md §4.4 tests after
// every CLINT tick to decide whether to divert the step into trap entry.
func (f *File) PendingTimerInterrupt() bool {
	return f.MTIP() && f.MTIE() && f.MIE()
}

func (f *File) setBit(addr, mask uint32, on bool) {
	r := f.regs[addr]
	if on {
		r.value |= mask
	} else {
		r.value &^= mask
	}
}
