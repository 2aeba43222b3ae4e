// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import "io"

// sigEntry is one base block's fingerprint, bucketed under its weak
// checksum inside a Signature.
type sigEntry struct {
	Strong StrongHash
	Index  uint64
}

// Signature is the base's fingerprint table: a weak checksum maps to every
// base block sharing that checksum, disambiguated by strong hash. It is
// immutable once built and carries the block size it was built with so a
// delta builder can detect a mismatched configuration.
type Signature struct {
	BlockSize int
	buckets   map[uint32][]sigEntry
}

// BuildSignature reads base in blockSize chunks and fingerprints each one.
// An empty base yields a Signature with no buckets; a base shorter than
// blockSize yields a single entry for the short final block.
func BuildSignature(base io.Reader, blockSize int) (*Signature, error) {
	if blockSize <= 0 {
		return nil, invalidConfig("block size must be positive")
	}
	if blockSize > MaxBlockSize {
		return nil, invalidConfig("block size exceeds the maximum allowed")
	}

	sig := &Signature{BlockSize: blockSize, buckets: make(map[uint32][]sigEntry)}
	buf := make([]byte, blockSize)
	var index uint64

	for {
		n, err := readFull(base, buf)
		if err != nil {
			return nil, ioError("reading base block", err)
		}
		if n == 0 {
			break
		}

		block := buf[:n]
		weak := computeWeakChecksum(block)
		strong := computeStrongHash(block)
		sig.buckets[weak] = append(sig.buckets[weak], sigEntry{Strong: strong, Index: index})
		index++

		if n < blockSize {
			break
		}
	}

	return sig, nil
}

// lookup returns the candidate entries sharing weak, if any.
func (s *Signature) lookup(weak uint32) ([]sigEntry, bool) {
	entries, ok := s.buckets[weak]
	return entries, ok
}

// findStrong scans candidate entries for one matching strong, returning its
// block index.
func findStrong(entries []sigEntry, strong StrongHash) (uint64, bool) {
	for _, e := range entries {
		if e.Strong == strong {
			return e.Index, true
		}
	}
	return 0, false
}
