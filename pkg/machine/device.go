// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"golang.org/x/sys/unix"
)

// KeyboardQueue is the non-blocking, at-most-one-byte-deep keyboard
// buffer behind the KBD_STATUS/KBD_DATA MMIO pair. The VM never blocks
// waiting for a key: Fill drains whatever the host terminal currently
// has pending via a non-blocking read(2) and either queues one 7-bit
// ASCII byte or leaves the queue empty.
//
// Escape sequences (arrow keys, function keys) arrive as a leading
// 0x1B followed by further bytes on the next few reads; those extra
// bytes are swallowed rather than queued, and the whole sequence
// collapses to a single 0x00 byte, matching the "special keys are
// replaced with 0" rule.
type KeyboardQueue struct {
	fd      int
	queued  bool
	byte0   byte
	inSeq   bool
	seqLeft int
}

// NewKeyboardQueue puts fd into non-blocking mode and returns a queue
// that polls it. fd is typically os.Stdin.Fd().
func NewKeyboardQueue(fd int) (*KeyboardQueue, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &KeyboardQueue{fd: fd}, nil
}

// Fill tops up the queue from the host terminal if it's currently
// empty. It never blocks: if nothing is pending, the queue stays
// empty and a subsequent KBD_STATUS read reports 0.
func (k *KeyboardQueue) Fill() {
	if k.queued {
		return
	}

	var scratch [1]byte
	for {
		n, err := unix.Read(k.fd, scratch[:])
		if err != nil || n != 1 {
			return
		}

		b := scratch[0]

		if k.inSeq {
			k.seqLeft--
			if k.seqLeft <= 0 {
				k.inSeq = false
				k.queued = true
				k.byte0 = 0
				return
			}
			continue
		}

		if b == 0x1B {
			k.inSeq = true
			k.seqLeft = 2 // "[", then the final byte
			continue
		}

		k.queued = true
		k.byte0 = b
		return
	}
}

// HasByte reports whether a byte is currently queued.
func (k *KeyboardQueue) HasByte() bool {
	return k.queued
}

// Take consumes and returns the queued byte, or 0 if none is queued.
func (k *KeyboardQueue) Take() byte {
	if !k.queued {
		return 0
	}
	k.queued = false
	return k.byte0
}
