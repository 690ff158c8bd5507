/*
 * rv32ima - CLINT tests.
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

package clint_test

import (
	"testing"

	"github.com/rcornwell/rv32ima/internal/clint"
)

func TestTickNeverFiresUntilProgrammed(t *testing.T) {
	c := clint.New()
	for i := 0; i < 1000; i++ {
		if c.Tick() {
			t.Fatalf("tick %d fired with mtimecmp unprogrammed", i)
		}
	}
}

func TestMtimecmpFiresAtExactTick(t *testing.T) {
	c := clint.New()
	c.Store(0x4000, 4, 5) // mtimecmp low word = 5
	c.Store(0x4004, 4, 0) // mtimecmp high word = 0

	var fired int
	for i := 0; i < 10; i++ {
		if c.Tick() {
			fired = i + 1
			break
		}
	}
	if fired != 5 {
		t.Fatalf("timer fired at tick %d, want 5", fired)
	}
}

func TestMtimeLoadReflectsTicks(t *testing.T) {
	c := clint.New()
	for i := 0; i < 3; i++ {
		c.Tick()
	}
	if v := c.Load(0xBFF8, 4); v != 3 {
		t.Fatalf("mtime low word = %d, want 3", v)
	}
	if v := c.Load(0xBFFC, 4); v != 0 {
		t.Fatalf("mtime high word = %d, want 0", v)
	}
}

func TestBaseAndSize(t *testing.T) {
	c := clint.New()
	if c.Base() != clint.Base {
		t.Fatalf("Base() = %#x", c.Base())
	}
	if c.Size() != clint.Size {
		t.Fatalf("Size() = %#x", c.Size())
	}
}
