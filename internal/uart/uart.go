/*
 * rv32ima - UART device: a write-only character sink to standard output.
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

package uart

import (
	"bufio"
	"io"
)

// Base is the UART's fixed bus address.
const Base uint32 = 0x1000_0000

// Size is the UART's mapped window.
const Size uint32 = 0x100

const (
	regData   uint32 = 0x00
	regStatus uint32 = 0x05

	// statusTxReady is the low-bit pattern the status register always
	// reports: the transmitter is a bottomless sink, so it is always
	// ready for another byte.
	statusTxReady uint32 = 0x40
)

// UART is a memory-mapped character sink. Every byte written to the data
// register is flushed to the underlying writer immediately, since the
// guest has no way to observe buffering and line-buffered stdout is the
// contract spec.md describes.
type UART struct {
	out *bufio.Writer
}

// New wraps w as the UART's transmit sink.
func New(w io.Writer) *UART {
	return &UART{out: bufio.NewWriter(w)}
}

// Base implements bus.Device.
func (u *UART) Base() uint32 { return Base }

// Size implements bus.Device.
func (u *UART) Size() uint32 { return Size }

// Load implements bus.Device. Only the status register reads as
// meaningful; everything else reads as zero.
func (u *UART) Load(offset, _ uint32) uint32 {
	if offset == regStatus {
		return statusTxReady
	}
	return 0
}

// Store implements bus.Device. Only a width-1 write to the data register
// has an effect; all other writes are ignored.
func (u *UART) Store(offset, width, value uint32) {
	if offset != regData || width != 1 {
		return
	}
	u.out.WriteByte(byte(value))
	u.out.Flush()
}
