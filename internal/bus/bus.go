/*
 * rv32ima - System bus: address decode and aligned little-endian access.
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

// Package bus implements the memory-mapped address space that binds RAM,
// UART and CLINT together: range decode, the width-1/2/4 little-endian
// load/store abstraction, and the single alignment check every device
// relies on.
package bus

import "errors"

// Errors returned by Load/Store. The CPU's fetch/load/store paths translate
// these into the appropriate trapcause.Cause depending on which phase of
// execution triggered the access.
var (
	ErrAddressMisaligned = errors.New("address misaligned")
	ErrAddressUnmapped   = errors.New("address unmapped")
)

// Device is a memory-mapped peripheral occupying a fixed, non-overlapping
// address range on the bus. Offsets passed to Load/Store have already had
// the device's base address subtracted.
type Device interface {
	// Base returns the device's first bus address.
	Base() uint32
	// Size returns the number of bytes the device occupies.
	Size() uint32
	// Load reads width bytes (1, 2 or 4) at offset and returns them as a
	// little-endian unsigned value.
	Load(offset uint32, width uint32) uint32
	// Store writes the low width bytes of value at offset, little-endian.
	Store(offset uint32, width uint32, value uint32)
}

// Bus dispatches width-1/2/4 loads and stores to whichever Device's range
// contains the address. The devices sit in a plain slice scanned in order
// rather than a map; the matching device is then called through the
// Device interface.
type Bus struct {
	devices []Device
}

// New returns a Bus serving the given devices. Devices must not overlap.
func New(devices ...Device) *Bus {
	return &Bus{devices: devices}
}

// isAligned reports whether addr is a valid base for a width-byte access.
func isAligned(addr, width uint32) bool {
	return addr%width == 0
}

func (b *Bus) find(addr, width uint32) (Device, uint32, error) {
	if !isAligned(addr, width) {
		return nil, 0, ErrAddressMisaligned
	}
	for _, d := range b.devices {
		base, size := d.Base(), d.Size()
		if addr >= base && addr < base+size {
			return d, addr - base, nil
		}
	}
	return nil, 0, ErrAddressUnmapped
}

// Load reads a width-byte (1, 2 or 4) little-endian value from addr,
// zero-extended to 32 bits. The caller is responsible for any further
// sign extension.
func (b *Bus) Load(addr, width uint32) (uint32, error) {
	dev, offset, err := b.find(addr, width)
	if err != nil {
		return 0, err
	}
	return dev.Load(offset, width), nil
}

// Store writes the low width bytes of value, little-endian, at addr.
func (b *Bus) Store(addr, width, value uint32) error {
	dev, offset, err := b.find(addr, width)
	if err != nil {
		return err
	}
	dev.Store(offset, width, value)
	return nil
}
