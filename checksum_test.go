// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"math/rand"
	"testing"

	"github.com/hooklift/assert"
)

// adlerScalar is a deliberately naive byte-at-a-time reference
// implementation, used to check the bulk-update path against the textbook
// recurrence rather than against itself.
func adlerScalar(data []byte) uint32 {
	var a, b uint32 = 1, 0
	for _, x := range data {
		a = (a + uint32(x)) % adlerMod
		b = (b + a) % adlerMod
	}
	return (b << 16) | a
}

func TestRollingChecksumMatchesScalarReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	data := make([]byte, 1_000_000)
	r.Read(data)

	var c RollingChecksum
	c.Reset()
	c.Update(data)

	assert.Equals(t, adlerScalar(data), c.Value())
}

func TestRollingChecksumEmptyWindow(t *testing.T) {
	var c RollingChecksum
	c.Reset()
	assert.Equals(t, uint32(1), c.Value())
}

// TestRollEquivalentToBulkUpdate checks that advancing byte-by-byte via Roll
// over a fixed window size reproduces the same Value() a fresh Reset+Update
// over the same window would, at every step.
func TestRollEquivalentToBulkUpdate(t *testing.T) {
	const windowSize = 37
	r := rand.New(rand.NewSource(7))
	data := make([]byte, 5000)
	r.Read(data)

	var rolling RollingChecksum
	rolling.Reset()
	rolling.Update(data[:windowSize])

	for i := 0; i+windowSize < len(data); i++ {
		var fresh RollingChecksum
		fresh.Reset()
		fresh.Update(data[i : i+windowSize])
		assert.Equals(t, fresh.Value(), rolling.Value())

		rolling.Roll(data[i], data[i+windowSize], windowSize)
	}
}

func TestRollingHashOnRealWorldShift(t *testing.T) {
	// "abcd" rolled into view one byte at a time from "aaabcd" must land on
	// the same weak checksum as computing it fresh.
	target := computeWeakChecksum([]byte("abcd"))

	var c RollingChecksum
	c.Reset()
	c.Update([]byte("aaab"))
	c.Roll('a', 'c', 4)
	c.Roll('a', 'd', 4)

	assert.Equals(t, target, c.Value())
}
