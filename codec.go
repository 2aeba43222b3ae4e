// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import (
	"encoding/binary"
	"io"
)

var codecByteOrder = binary.LittleEndian

const (
	recordTagCopy   byte = 0
	recordTagInsert byte = 1
)

// WriteTo serializes s as: blockSize (uint32), bucket count (uint32), then
// per bucket the weak checksum (uint32), entry count (uint32), then per
// entry the strong hash (16 bytes) and block index (uint64).
func (s *Signature) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var hdr [8]byte
	codecByteOrder.PutUint32(hdr[0:4], uint32(s.BlockSize))
	codecByteOrder.PutUint32(hdr[4:8], uint32(len(s.buckets)))
	n, err := w.Write(hdr[:])
	total += int64(n)
	if err != nil {
		return total, ioError("writing signature header", err)
	}

	var bucketHdr [8]byte
	var entryBuf [24]byte
	for weak, entries := range s.buckets {
		codecByteOrder.PutUint32(bucketHdr[0:4], weak)
		codecByteOrder.PutUint32(bucketHdr[4:8], uint32(len(entries)))
		n, err := w.Write(bucketHdr[:])
		total += int64(n)
		if err != nil {
			return total, ioError("writing signature bucket header", err)
		}
		for _, e := range entries {
			copy(entryBuf[0:16], e.Strong[:])
			codecByteOrder.PutUint64(entryBuf[16:24], e.Index)
			n, err := w.Write(entryBuf[:])
			total += int64(n)
			if err != nil {
				return total, ioError("writing signature entry", err)
			}
		}
	}
	return total, nil
}

// ReadSignature deserializes a Signature written by WriteTo.
func ReadSignature(r io.Reader) (*Signature, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, ioError("reading signature header", err)
	}
	blockSize := int(codecByteOrder.Uint32(hdr[0:4]))
	bucketCount := int(codecByteOrder.Uint32(hdr[4:8]))
	if blockSize <= 0 {
		return nil, invalidConfig("signature has non-positive block size")
	}

	sig := &Signature{BlockSize: blockSize, buckets: make(map[uint32][]sigEntry, bucketCount)}
	var bucketHdr [8]byte
	var entryBuf [24]byte
	for i := 0; i < bucketCount; i++ {
		if _, err := io.ReadFull(r, bucketHdr[:]); err != nil {
			return nil, ioError("reading signature bucket header", err)
		}
		weak := codecByteOrder.Uint32(bucketHdr[0:4])
		entryCount := int(codecByteOrder.Uint32(bucketHdr[4:8]))
		entries := make([]sigEntry, entryCount)
		for j := 0; j < entryCount; j++ {
			if _, err := io.ReadFull(r, entryBuf[:]); err != nil {
				return nil, ioError("reading signature entry", err)
			}
			var e sigEntry
			copy(e.Strong[:], entryBuf[0:16])
			e.Index = codecByteOrder.Uint64(entryBuf[16:24])
			entries[j] = e
		}
		sig.buckets[weak] = entries
	}
	return sig, nil
}

// WriteTo serializes d as a uint64 total-size header followed by a tagged
// record per Command: Copy as {tag, offset uint64, length uint64}, Insert
// as {tag, length uint32, bytes...}.
func (d *Delta) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var sizeBuf [8]byte
	codecByteOrder.PutUint64(sizeBuf[:], d.Size)
	n, err := w.Write(sizeBuf[:])
	total += int64(n)
	if err != nil {
		return total, ioError("writing delta header", err)
	}

	for _, cmd := range d.Commands {
		switch cmd.Type {
		case CmdCopy:
			var rec [17]byte
			rec[0] = recordTagCopy
			codecByteOrder.PutUint64(rec[1:9], cmd.Offset)
			codecByteOrder.PutUint64(rec[9:17], cmd.Length)
			n, err := w.Write(rec[:])
			total += int64(n)
			if err != nil {
				return total, ioError("writing copy record", err)
			}
		case CmdInsert:
			var hdr [5]byte
			hdr[0] = recordTagInsert
			codecByteOrder.PutUint32(hdr[1:5], uint32(len(cmd.Data)))
			n, err := w.Write(hdr[:])
			total += int64(n)
			if err != nil {
				return total, ioError("writing insert header", err)
			}
			n, err = w.Write(cmd.Data)
			total += int64(n)
			if err != nil {
				return total, ioError("writing insert payload", err)
			}
		}
	}
	return total, nil
}

// ReadDelta deserializes a Delta written by WriteTo.
func ReadDelta(r io.Reader) (*Delta, error) {
	var sizeBuf [8]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, ioError("reading delta header", err)
	}
	d := &Delta{Size: codecByteOrder.Uint64(sizeBuf[:])}

	var tag [1]byte
	for {
		_, err := io.ReadFull(r, tag[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ioError("reading record tag", err)
		}
		switch tag[0] {
		case recordTagCopy:
			var rec [16]byte
			if _, err := io.ReadFull(r, rec[:]); err != nil {
				return nil, ioError("reading copy record", err)
			}
			d.Commands = append(d.Commands, Command{
				Type:   CmdCopy,
				Offset: codecByteOrder.Uint64(rec[0:8]),
				Length: codecByteOrder.Uint64(rec[8:16]),
			})
		case recordTagInsert:
			var lenBuf [4]byte
			if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
				return nil, ioError("reading insert length", err)
			}
			data := make([]byte, codecByteOrder.Uint32(lenBuf[:]))
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, ioError("reading insert payload", err)
			}
			d.Commands = append(d.Commands, Command{Type: CmdInsert, Length: uint64(len(data)), Data: data})
		default:
			return nil, malformedDelta("unknown delta record tag", nil)
		}
	}
	return d, nil
}
