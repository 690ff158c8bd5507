/*
 * rv32ima - Loader tests.
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

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rcornwell/rv32ima/internal/ram"
)

func TestLoadRawPlacesAtBase(t *testing.T) {
	r := ram.New(256)
	path := filepath.Join(t.TempDir(), "prog.bin")
	data := []byte{0x13, 0x00, 0x00, 0x00} // addi x0, x0, 0
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	img, err := LoadKernel(path, r)
	if err != nil {
		t.Fatalf("LoadKernel: %v", err)
	}
	if img.EntryPC != ram.Base {
		t.Errorf("EntryPC = %#x, want RAM base", img.EntryPC)
	}
	if got := r.Load(0, 4); got != 0x00000013 {
		t.Errorf("byte-for-byte raw load mismatch: %#x", got)
	}
}

func TestLoadRawTooBigFails(t *testing.T) {
	r := ram.New(4)
	path := filepath.Join(t.TempDir(), "prog.bin")
	if err := os.WriteFile(path, make([]byte, 8), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadKernel(path, r); err == nil {
		t.Fatalf("expected an error for an oversized raw image")
	}
}

func TestLoadDTBPlacesNearTopAligned(t *testing.T) {
	r := ram.New(256)
	path := filepath.Join(t.TempDir(), "board.dtb")
	data := []byte{0xd0, 0x0d, 0xfe, 0xed, 1, 2, 3}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	addr, err := LoadDTB(path, r)
	if err != nil {
		t.Fatalf("LoadDTB: %v", err)
	}
	if addr%dtbAlign != 0 {
		t.Errorf("dtb address %#x is not %d-byte aligned", addr, dtbAlign)
	}
	if addr < ram.Base || addr+uint32(len(data)) > ram.Base+r.Size() {
		t.Errorf("dtb address %#x with length %d falls outside RAM", addr, len(data))
	}
}

func TestLoadDTBTooBigFails(t *testing.T) {
	r := ram.New(4)
	path := filepath.Join(t.TempDir(), "board.dtb")
	if err := os.WriteFile(path, make([]byte, 64), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadDTB(path, r); err == nil {
		t.Fatalf("expected an error for a dtb that does not fit")
	}
}
