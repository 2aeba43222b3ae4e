// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"bufio"
	"io"
)

// applyBufferSize is the buffered writer capacity used while applying a
// Delta, coalescing the small writes a long Command sequence can produce.
const applyBufferSize = 64 * 1024

// Apply reconstructs the target described by delta, reading base block data
// from base and writing the result to out. base must support Seek; Apply
// elides a seek when the current base position already matches the next
// Copy's offset, which happens naturally after a sequence of coalesced
// Copies.
//
// A malformed delta, where a Copy's range runs past the end of base,
// surfaces as a KindMalformedDelta error that wraps the read-past-EOF error
// from base.
func Apply(base io.ReadSeeker, delta *Delta, out io.Writer) error {
	w := bufio.NewWriterSize(out, applyBufferSize)
	var pos int64

	for _, cmd := range delta.Commands {
		switch cmd.Type {
		case CmdInsert:
			if _, err := w.Write(cmd.Data); err != nil {
				return ioError("writing insert", err)
			}
		case CmdCopy:
			start := int64(cmd.Offset)
			if start != pos {
				if _, err := base.Seek(start, io.SeekStart); err != nil {
					return ioError("seeking base", err)
				}
				pos = start
			}
			n, err := io.CopyN(w, base, int64(cmd.Length))
			pos += n
			if err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return malformedDelta("copy range extends past end of base", err)
				}
				return ioError("copying base range", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return ioError("flushing output", err)
	}
	return nil
}
