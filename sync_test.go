// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"bytes"
	"testing"

	"github.com/hooklift/assert"
	"github.com/pkg/profile"
)

// TestSyncLargeCorpus exercises the whole pipeline, signature, delta and
// patch, over a multi-megabyte randomized corpus with a mix of edits. It is
// the closest analogue to the teacher's own large-scale TestSync and is
// profiled the same way.
func TestSyncLargeCorpus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large corpus sync in short mode")
	}
	defer profile.Start(profile.ProfilePath(t.TempDir())).Stop()

	const size = 8 * 1024 * 1024
	base := srand(1000, size)

	target := append([]byte{}, base...)
	target = append(target[:size/4], append(srand(1001, 64*1024), target[size/4:]...)...)
	target = append(target[:size/2], target[size/2+32*1024:]...)
	target = append(target, srand(1002, 128*1024)...)

	sig, err := BuildSignature(bytes.NewReader(base), DefaultBlockSize)
	assert.Ok(t, err)

	delta, err := NewDeltaBuilder().Build(sig, bytes.NewReader(target))
	assert.Ok(t, err)
	assert.Cond(t, len(delta.Commands) > 0, "expected a non-empty delta for a modified corpus")

	out := new(bytes.Buffer)
	err = Apply(bytes.NewReader(base), delta, out)
	assert.Ok(t, err)
	assert.Cond(t, bytes.Equal(target, out.Bytes()), "reconstructed target did not match original")
}

func BenchmarkBuildSignature(b *testing.B) {
	base := srand(2000, 4*1024*1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildSignature(bytes.NewReader(base), DefaultBlockSize); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildDelta(b *testing.B) {
	base := srand(2001, 4*1024*1024)
	target := append(append([]byte{}, base[:1024*1024]...), srand(2002, 64*1024)...)
	target = append(target, base[1024*1024:]...)

	sig, err := BuildSignature(bytes.NewReader(base), DefaultBlockSize)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewDeltaBuilder().Build(sig, bytes.NewReader(target)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApply(b *testing.B) {
	base := srand(2003, 4*1024*1024)
	target := append(append([]byte{}, base[:1024*1024]...), srand(2004, 64*1024)...)
	target = append(target, base[1024*1024:]...)

	sig, err := BuildSignature(bytes.NewReader(base), DefaultBlockSize)
	if err != nil {
		b.Fatal(err)
	}
	delta, err := NewDeltaBuilder().Build(sig, bytes.NewReader(target))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Apply(bytes.NewReader(base), delta, new(bytes.Buffer)); err != nil {
			b.Fatal(err)
		}
	}
}
