// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// StrongHash is the 128-bit XXH3 digest of a block's exact bytes, used to
// confirm a weak-checksum hit before trusting it as a match.
type StrongHash [16]byte

// computeStrongHash hashes block with XXH3-128.
func computeStrongHash(block []byte) StrongHash {
	sum := xxh3.Hash128(block)
	var out StrongHash
	binary.BigEndian.PutUint64(out[0:8], sum.Hi)
	binary.BigEndian.PutUint64(out[8:16], sum.Lo)
	return out
}
