// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package deltasync

import "io"

// CommandType distinguishes the two DeltaCommand cases.
type CommandType uint8

const (
	// CmdCopy copies Length bytes from the base starting at Offset.
	CmdCopy CommandType = iota
	// CmdInsert writes Data verbatim.
	CmdInsert
)

func (t CommandType) String() string {
	if t == CmdCopy {
		return "copy"
	}
	return "insert"
}

// Command is one instruction in a Delta: either a Copy (Offset/Length,
// measured in base bytes) or an Insert (Data, the literal payload). Length
// is set for both cases (for Insert, Length == len(Data)) so callers can sum
// Length across a Delta without branching on Type.
type Command struct {
	Type   CommandType
	Offset uint64
	Length uint64
	Data   []byte
}

// CommandFunc receives one Command at a time from a streaming delta build.
// Returning a non-nil error aborts the build.
type CommandFunc func(Command) error

// Delta is an ordered sequence of Commands that reconstructs a target from a
// base, plus the target's total size for pre-allocation by an applier.
type Delta struct {
	Commands []Command
	Size     uint64
}

// DeltaBuilder scans a target against a Signature and emits Commands. The
// zero value is ready to use with the signature's own block size; set
// BlockSize to have the builder verify it against the signature's.
type DeltaBuilder struct {
	// BlockSize, if nonzero, must match the Signature's BlockSize or Build/
	// Stream fail with a KindInvalidConfig error before any work is done.
	BlockSize int
}

// NewDeltaBuilder returns a DeltaBuilder that infers its block size from
// whichever Signature it is given.
func NewDeltaBuilder() *DeltaBuilder {
	return &DeltaBuilder{}
}

func (b *DeltaBuilder) resolveBlockSize(sig *Signature) (int, error) {
	if sig.BlockSize <= 0 {
		return 0, invalidConfig("signature has non-positive block size")
	}
	if b.BlockSize != 0 && b.BlockSize != sig.BlockSize {
		return 0, invalidConfig("delta builder block size does not match signature block size")
	}
	return sig.BlockSize, nil
}

// Build scans target against sig and returns the full Delta.
func (b *DeltaBuilder) Build(sig *Signature, target io.Reader) (*Delta, error) {
	d := &Delta{}
	err := b.Stream(sig, target, func(c Command) error {
		d.Commands = append(d.Commands, c)
		d.Size += c.Length
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Stream scans target against sig, invoking emit for each Command as it is
// produced rather than collecting them. emit is called synchronously from
// within Stream; a non-nil return aborts the scan and is returned from
// Stream unchanged.
func (b *DeltaBuilder) Stream(sig *Signature, target io.Reader, emit CommandFunc) error {
	blockSize, err := b.resolveBlockSize(sig)
	if err != nil {
		return err
	}
	sc := &scanner{sig: sig, blockSize: blockSize, reader: target, emitFunc: emit}
	return sc.run()
}

// scanner holds the delta builder's working state for a single scan: a
// reader-fed buffer of 2*blockSize capacity, a window position, the rolling
// checksum over the current window, a pending-literal accumulator, and an
// open ("last") Copy eligible for coalescing.
type scanner struct {
	sig       *Signature
	blockSize int
	reader    io.Reader
	emitFunc  CommandFunc

	buf    []byte
	start  int
	length int

	rc       RollingChecksum
	pending  []byte
	lastCopy *Command
}

func (s *scanner) emit(c Command) error {
	return s.emitFunc(c)
}

func (s *scanner) run() error {
	B := s.blockSize
	s.buf = make([]byte, 2*B)

	n, err := readFull(s.reader, s.buf[:B])
	if err != nil {
		return ioError("reading target", err)
	}
	if n == 0 {
		return nil
	}
	if n < B {
		return s.shortTarget(s.buf[:n])
	}

	s.length = n
	s.rc.Reset()
	s.rc.Update(s.buf[:B])

	for {
		if err := s.scan(); err != nil {
			return err
		}

		if s.start > 0 {
			copy(s.buf, s.buf[s.start:s.length])
			s.length -= s.start
			s.start = 0
		}

		m, err := readFull(s.reader, s.buf[s.length:cap(s.buf)])
		if err != nil {
			return ioError("reading target", err)
		}
		if m == 0 {
			break
		}
		s.length += m
		if s.length >= B {
			s.rc.Reset()
			s.rc.Update(s.buf[:B])
		}
	}

	return s.tail()
}

// shortTarget handles a target shorter than one block in its entirety: a
// single one-shot comparison against the signature, no rolling involved.
func (s *scanner) shortTarget(block []byte) error {
	weak := computeWeakChecksum(block)
	if entries, ok := s.sig.lookup(weak); ok {
		strong := computeStrongHash(block)
		if idx, ok := findStrong(entries, strong); ok {
			return s.emit(Command{
				Type:   CmdCopy,
				Offset: idx * uint64(s.blockSize),
				Length: uint64(len(block)),
			})
		}
	}
	data := append([]byte(nil), block...)
	return s.emit(Command{Type: CmdInsert, Length: uint64(len(data)), Data: data})
}

// scan slides the window forward one byte (or one block, on a match) at a
// time until fewer than blockSize bytes remain buffered.
func (s *scanner) scan() error {
	B := s.blockSize
	for s.start+B <= s.length {
		matched := false
		weak := s.rc.Value()
		if entries, ok := s.sig.lookup(weak); ok {
			strong := computeStrongHash(s.buf[s.start : s.start+B])
			if idx, ok := findStrong(entries, strong); ok {
				if err := s.emitCopy(idx*uint64(B), uint64(B)); err != nil {
					return err
				}
				s.start += B
				if s.start+B <= s.length {
					s.rc.Reset()
					s.rc.Update(s.buf[s.start : s.start+B])
				}
				matched = true
			}
		}
		if !matched {
			old := s.buf[s.start]
			s.pending = append(s.pending, old)
			s.start++
			if s.start+B <= s.length {
				s.rc.Roll(old, s.buf[s.start+B-1], B)
			}
		}
	}
	return nil
}

// tail handles the final fragment shorter than a full block left over once
// the reader is exhausted: one more one-shot comparison, same as
// shortTarget, but feeding into the pending/lastCopy machinery rather than
// emitting directly, since a Copy or Insert here may still be coalesced
// with one already open.
func (s *scanner) tail() error {
	frag := s.buf[s.start:s.length]
	if len(frag) > 0 {
		weak := computeWeakChecksum(frag)
		matched := false
		if entries, ok := s.sig.lookup(weak); ok {
			strong := computeStrongHash(frag)
			if idx, ok := findStrong(entries, strong); ok {
				if err := s.emitCopy(idx*uint64(s.blockSize), uint64(len(frag))); err != nil {
					return err
				}
				matched = true
			}
		}
		if !matched {
			s.pending = append(s.pending, frag...)
		}
	}
	return s.finish()
}

// emitCopy records a match at (offset, length), coalescing it into the
// currently open Copy when possible. Coalescing only applies when no
// literal bytes separate the two matches in the target: if pending literal
// bytes are waiting, the open Copy (older) and the pending literal (newer)
// are flushed in that order first, since an Insert between two Copies
// always breaks adjacency.
func (s *scanner) emitCopy(offset, length uint64) error {
	if len(s.pending) > 0 {
		if err := s.flushLastCopy(); err != nil {
			return err
		}
		if err := s.flushPending(); err != nil {
			return err
		}
		s.lastCopy = &Command{Type: CmdCopy, Offset: offset, Length: length}
		return nil
	}

	if s.lastCopy != nil && s.lastCopy.Offset+s.lastCopy.Length == offset {
		s.lastCopy.Length += length
		return nil
	}

	if err := s.flushLastCopy(); err != nil {
		return err
	}
	s.lastCopy = &Command{Type: CmdCopy, Offset: offset, Length: length}
	return nil
}

func (s *scanner) flushLastCopy() error {
	if s.lastCopy == nil {
		return nil
	}
	c := *s.lastCopy
	s.lastCopy = nil
	return s.emit(c)
}

func (s *scanner) flushPending() error {
	if len(s.pending) == 0 {
		return nil
	}
	data := s.pending
	s.pending = nil
	return s.emit(Command{Type: CmdInsert, Length: uint64(len(data)), Data: data})
}

func (s *scanner) finish() error {
	if err := s.flushLastCopy(); err != nil {
		return err
	}
	return s.flushPending()
}
