/*
 * rv32ima - RAM device.
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

// Package ram is a flat byte-addressed memory device, based at a fixed bus
// address. Loads and stores never fail once the bus has already confirmed
// alignment and range.
package ram

// Base is the fixed physical base address of RAM on the bus.
const Base uint32 = 0x8000_0000

// RAM is a plain byte array backing the hart's program and data segments.
type RAM struct {
	bytes []byte
}

// New allocates a zeroed RAM of size bytes.
func New(size uint32) *RAM {
	return &RAM{bytes: make([]byte, size)}
}

// Base implements bus.Device.
func (r *RAM) Base() uint32 { return Base }

// Size implements bus.Device.
func (r *RAM) Size() uint32 { return uint32(len(r.bytes)) }

// Load implements bus.Device.
func (r *RAM) Load(offset, width uint32) uint32 {
	var v uint32
	for i := uint32(0); i < width; i++ {
		v |= uint32(r.bytes[offset+i]) << (8 * i)
	}
	return v
}

// Store implements bus.Device.
func (r *RAM) Store(offset, width, value uint32) {
	for i := uint32(0); i < width; i++ {
		r.bytes[offset+i] = byte(value >> (8 * i))
	}
}

// WriteAt copies data into RAM starting at the given offset from Base,
// used by the loader to place a raw binary, ELF segments or a DTB blob.
// It panics if data does not fit, which the loader must have already
// ruled out against Size().
func (r *RAM) WriteAt(offset uint32, data []byte) {
	copy(r.bytes[offset:uint64(offset)+uint64(len(data))], data)
}

// Bytes exposes the backing slice read-only, for debug dumps and tests.
func (r *RAM) Bytes() []byte {
	return r.bytes
}
