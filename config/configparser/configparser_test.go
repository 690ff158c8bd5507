/*
 * rv32ima - Board configuration file parser tests.
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

package configparser

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.cfg")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "# board config\nram 16M\nkernel kernel.bin\ndtb board.dtb\nsleep 500\ninteractive true\n")

	b, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.RAMSize != 16*1024*1024 {
		t.Errorf("RAMSize = %d, want 16M", b.RAMSize)
	}
	if b.KernelPath != "kernel.bin" {
		t.Errorf("KernelPath = %q", b.KernelPath)
	}
	if b.DTBPath != "board.dtb" {
		t.Errorf("DTBPath = %q", b.DTBPath)
	}
	if b.SleepMicros != 500 {
		t.Errorf("SleepMicros = %d", b.SleepMicros)
	}
	if !b.Interactive {
		t.Errorf("Interactive = false, want true")
	}
}

func TestLoadLeavesUnsetFieldsAlone(t *testing.T) {
	path := writeTemp(t, "kernel kernel.bin\n")
	base := Default()
	base.SleepMicros = 1000

	b, err := Load(path, base)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.RAMSize != base.RAMSize {
		t.Errorf("RAMSize changed unexpectedly: %d", b.RAMSize)
	}
	if b.SleepMicros != 1000 {
		t.Errorf("SleepMicros changed unexpectedly: %d", b.SleepMicros)
	}
}

func TestParseSizeSuffixes(t *testing.T) {
	cases := map[string]uint32{
		"1024":  1024,
		"4K":    4 * 1024,
		"64M":   64 * 1024 * 1024,
		"1G":    1024 * 1024 * 1024,
		"0x100": 0x100,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		if err != nil {
			t.Errorf("parseSize(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestUnknownKeyIsError(t *testing.T) {
	path := writeTemp(t, "bogus value\n")
	if _, err := Load(path, Default()); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	path := writeTemp(t, "\n# just a comment\n   \nram 8M # inline comment\n")
	b, err := Load(path, Default())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.RAMSize != 8*1024*1024 {
		t.Errorf("RAMSize = %d, want 8M", b.RAMSize)
	}
}
