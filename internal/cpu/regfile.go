/*
 * rv32ima - General-purpose register file.
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

// regFile holds x1..x31; x0 is never stored, only special-cased on
// read/write, per spec.md §9's "31-entry physical array" note.
type regFile struct {
	x [31]uint32
}

// read returns the value of register index i, interpreted as a 32-bit
// two's-complement word. x0 always reads zero.
func (r *regFile) read(i uint8) uint32 {
	if i == 0 {
		return 0
	}
	return r.x[i-1]
}

// write stores v into register i. Writes to x0 are ignored.
func (r *regFile) write(i uint8, v uint32) {
	if i == 0 {
		return
	}
	r.x[i-1] = v
}
