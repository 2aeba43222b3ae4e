// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

// adlerMod is the Adler-32 modulus.
const adlerMod = 65521

// adlerNMAX is the largest run of bytes that can be summed into a and b
// before either could overflow a uint32 under the Adler-32 parameters,
// letting Update defer the modulo reduction to once per chunk instead of
// once per byte.
const adlerNMAX = 5552

// RollingChecksum is the weak, O(1)-per-byte-advance checksum used to find
// candidate block matches before paying for a strong hash. It is an
// Adler-32-family recurrence: a is the running byte sum, b is the running
// weighted sum, both reduced mod 65521; Value combines them into the 32-bit
// result rsync calls the "weak checksum".
//
// A RollingChecksum built incrementally via Roll calls produces the same
// Value as one built fresh via Reset+Update over the same window content;
// this equivalence is the property the delta builder's correctness rests on.
type RollingChecksum struct {
	a, b uint32
}

// Reset returns the checksum to its initial (empty-window) state.
func (c *RollingChecksum) Reset() {
	c.a = 1
	c.b = 0
}

// Update absorbs data in bulk, as if each byte had been fed in order. It may
// be called on an already-nonempty checksum to extend the window; Reset
// first to start a fresh window.
func (c *RollingChecksum) Update(data []byte) {
	a, b := c.a, c.b
	for len(data) > 0 {
		n := len(data)
		if n > adlerNMAX {
			n = adlerNMAX
		}
		chunk := data[:n]
		for _, x := range chunk {
			a += uint32(x)
			b += a
		}
		a %= adlerMod
		b %= adlerMod
		data = data[n:]
	}
	c.a, c.b = a, b
}

// Roll advances the checksum by one byte: oldByte leaves the window,
// newByte enters it, and windowSize is the (constant) size of the window
// both belong to.
func (c *RollingChecksum) Roll(oldByte, newByte byte, windowSize int) {
	old := int64(oldByte)
	n := int64(newByte)
	w := int64(windowSize)

	a := (int64(c.a) - old + n) % adlerMod
	if a < 0 {
		a += adlerMod
	}
	b := (int64(c.b) - (w*old)%adlerMod + a - 1) % adlerMod
	if b < 0 {
		b += adlerMod
	}
	c.a = uint32(a)
	c.b = uint32(b)
}

// Value returns the current 32-bit weak checksum, (b<<16)|a.
func (c *RollingChecksum) Value() uint32 {
	return (c.b << 16) | c.a
}

// computeWeakChecksum is a convenience one-shot helper equivalent to
// Reset+Update+Value on a fresh RollingChecksum.
func computeWeakChecksum(data []byte) uint32 {
	var c RollingChecksum
	c.Reset()
	c.Update(data)
	return c.Value()
}
