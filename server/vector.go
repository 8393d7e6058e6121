// Copyright 2024-2026 The Sluice Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

// buildVector fills the IO vector from the queued packets and returns
// the byte count the next send attempt should request. The combined
// writev+sendfile primitive appends file bytes after all memory
// entries, so only one file extent fits per pass and nothing may follow
// it. Packets stay queued, they are consumed by accounting after the IO
// completes. The only mutations here are header materialization and the
// removal of dead packets.
func (q *queue) buildVector(tx *transmission) int64 {
	q.ioCount = 0
	q.ioFile = false

	for i := 0; i < len(q.packets); {
		p := q.packets[i]
		if p.kind == packetEnd {
			break
		}
		if p.kind == packetHeader {
			tx.writeHeaders(p)
		}
		if q.ioFile || q.vecLen >= sendVectorLimit {
			// Only one file extent allowed, and it must trail.
			break
		}
		if p.empty() {
			q.removeAt(i)
			continue
		}
		q.addPacket(p)
		i++
	}
	return q.ioCount
}

func (q *queue) addEntry(b []byte) {
	q.vec[q.vecLen] = b
	q.vecLen++
	q.ioCount += int64(len(b))
}

// addPacket adds one packet to the IO vector. File extents are virtual,
// they contribute to ioCount and set the extent position but occupy no
// vector slot.
func (q *queue) addPacket(p *packet) {
	if len(p.prefix) > 0 {
		q.addEntry(p.prefix)
	}
	if p.esize > 0 {
		q.ioFile = true
		q.ioPos = p.epos
		q.ioCount += p.esize
	} else if len(p.content) > 0 {
		q.addEntry(p.content)
	}
}

// adjustVector clears vector entries that have actually been
// transmitted, supporting partial writes on a full socket. A partially
// written entry is shrunk in place and the walk stops. Once every entry
// is accounted for, any remainder came out of the file extent and the
// vector resets, forcing a rebuild on the next attempt.
func (q *queue) adjustVector(written int64) {
	for i := 0; i < q.vecLen; {
		l := int64(len(q.vec[i]))
		if written < l {
			q.vec[i] = q.vec[i][written:]
			q.ioCount -= written
			return
		}
		written -= l
		q.ioCount -= l
		copy(q.vec[i:], q.vec[i+1:q.vecLen])
		q.vecLen--
		q.vec[q.vecLen] = nil
	}
	if written > 0 && q.ioFile {
		q.ioPos += written
	}
	q.vecLen = 0
	q.ioCount = 0
	q.ioFile = false
}
