/*
 * rv32ima - Program image loader: raw binaries, ELF32 kernels, and DTBs.
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

// Package loader places a guest kernel image and an optional device tree
// blob into RAM ahead of the first Step. Two image formats are accepted:
// a raw binary, placed verbatim at RAM base, and an ELF32 executable,
// whose PT_LOAD segments are placed at their virtual addresses. See
// DESIGN.md for why this package reaches for the standard library's
// debug/elf instead of a third-party ELF parser.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"

	"github.com/rcornwell/rv32ima/internal/ram"
)

// dtbAlign is the alignment Linux/OpenSBI expect for the flattened device
// tree blob.
const dtbAlign = 8

// Image describes where execution should begin after loading.
type Image struct {
	EntryPC uint32
}

// LoadKernel reads path and places it into r, returning the entry PC.
// A file beginning with the ELF magic is parsed as ELF32/RISC-V and its
// PT_LOAD segments are placed at their virtual addresses relative to
// ram.Base; anything else is treated as a raw binary and placed at
// ram.Base verbatim, entering at the first instruction.
func LoadKernel(path string, r *ram.RAM) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("loader: read %s: %w", path, err)
	}

	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return loadELF(data, r)
	}
	return loadRaw(data, r)
}

func loadRaw(data []byte, r *ram.RAM) (Image, error) {
	if uint32(len(data)) > r.Size() {
		return Image{}, fmt.Errorf("loader: raw image (%d bytes) does not fit in RAM (%d bytes)", len(data), r.Size())
	}
	r.WriteAt(0, data)
	return Image{EntryPC: ram.Base}, nil
}

func loadELF(data []byte, r *ram.RAM) (Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("loader: parse ELF: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return Image{}, fmt.Errorf("loader: only ELF32 images are supported, got %s", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return Image{}, fmt.Errorf("loader: expected EM_RISCV, got %s", f.Machine)
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		if prog.Vaddr < uint64(ram.Base) {
			return Image{}, fmt.Errorf("loader: segment at %#x is below RAM base %#x", prog.Vaddr, ram.Base)
		}
		offset := uint32(prog.Vaddr - uint64(ram.Base))
		if offset+uint32(prog.Filesz) > r.Size() {
			return Image{}, fmt.Errorf("loader: segment at %#x (%d bytes) does not fit in RAM", prog.Vaddr, prog.Filesz)
		}
		buf := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(buf, 0); err != nil {
			return Image{}, fmt.Errorf("loader: read segment at %#x: %w", prog.Vaddr, err)
		}
		r.WriteAt(offset, buf)
	}

	entry := uint32(f.Entry)
	if entry < ram.Base {
		return Image{}, fmt.Errorf("loader: entry point %#x is below RAM base %#x", entry, ram.Base)
	}
	return Image{EntryPC: entry}, nil
}

// LoadDTB places a device tree blob near the top of RAM, 8-byte aligned,
// and returns its physical address. Callers seed a0=0 and a1=that address
// in the registers the guest's entry convention expects.
func LoadDTB(path string, r *ram.RAM) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("loader: read dtb %s: %w", path, err)
	}

	size := r.Size()
	if uint64(len(data)) > uint64(size) {
		return 0, fmt.Errorf("loader: dtb (%d bytes) does not fit in RAM (%d bytes)", len(data), size)
	}
	offset := (size - uint32(len(data))) &^ (dtbAlign - 1)
	if offset < uint32(len(data)) || offset+uint32(len(data)) > size {
		return 0, fmt.Errorf("loader: dtb (%d bytes) does not fit in RAM (%d bytes)", len(data), size)
	}
	r.WriteAt(offset, data)
	return ram.Base + offset, nil
}
