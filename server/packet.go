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

type packetKind int8

const (
	packetHeader packetKind = iota
	packetData
	packetEnd
)

// packet is one unit of outbound data: a small in-memory buffer, a
// virtual extent of an open file, or the end marker. A packet with a
// file extent carries no content, prefix may coexist with either.
type packet struct {
	kind    packetKind
	prefix  []byte // framing bytes sent before content or extent
	content []byte // materialized bytes
	esize   int64  // remaining extent bytes, not held in memory
	epos    int64  // file offset of the extent
}

func (p *packet) empty() bool {
	return len(p.prefix) == 0 && len(p.content) == 0 && p.esize == 0
}

// queue is the ordered outbound packet sequence of one transmission,
// plus the IO vector state derived from it. Front-to-back order is wire
// order. Owned by a single sequential drain path, no locking.
type queue struct {
	packets []*packet
	count   int64 // materialized content bytes queued, for upstream flow control

	// IO vector state. Entries alias prefix/content buffers of queued
	// packets, compaction shrinks them in place, never copies.
	vec     [sendMaxVector][]byte
	vecLen  int
	ioCount int64 // bytes the next send attempt should request
	ioFile  bool  // the vector ends in a file extent
	ioPos   int64 // file offset for the pending extent
}

func newQueue() *queue {
	return &queue{packets: make([]*packet, 0, 4)}
}

func (q *queue) first() *packet {
	if len(q.packets) == 0 {
		return nil
	}
	return q.packets[0]
}

func (q *queue) push(p *packet) {
	q.packets = append(q.packets, p)
	q.count += int64(len(p.content))
}

// pop removes the front packet. Content bytes were already deducted
// from count as they drained.
func (q *queue) pop() *packet {
	p := q.first()
	if p == nil {
		return nil
	}
	q.packets = q.packets[1:]
	return p
}

// removeAt splices out the packet at i without disturbing the scan
// cursor of a build pass.
func (q *queue) removeAt(i int) {
	q.packets = append(q.packets[:i], q.packets[i+1:]...)
}

// discardData drops body bytes from all queued data packets, leaving
// header and end packets alone. Emptied packets are spliced out by the
// next vector build.
func (q *queue) discardData() {
	for _, p := range q.packets {
		if p.kind != packetData {
			continue
		}
		q.count -= int64(len(p.content))
		p.prefix = nil
		p.content = nil
		p.esize = 0
	}
}

// pending reports materialized bytes queued, used by callers to pace
// body population. File extents never count here.
func (q *queue) pending() int64 { return q.count }
