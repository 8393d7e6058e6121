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

import (
	"os"

	"github.com/pkg/errors"

	"github.com/sluice-io/sluice-server/server/internal/network"
)

// sendConnector drains a file-backed transmission with the combined
// writev+sendfile primitive: headers and chunk framing go out as vector
// entries, file bytes trail them straight from the kernel, never staged
// in process memory.
type sendConnector struct{}

// open acquires the document handle. The declared size is checked
// against the body limit first, so an oversized document is refused
// before any byte moves.
func (sendConnector) open(tx *transmission) error {
	if tx.noBody {
		return nil
	}
	if tx.maxBody > 0 && tx.fileSize > tx.maxBody {
		tx.tooLarge = true
		return ErrBodyTooLarge
	}
	f, err := os.Open(tx.filename)
	if err != nil {
		return errors.Wrapf(ErrDocumentNotFound, "cannot open document %s: %v", tx.filename, err)
	}
	tx.file = f
	return nil
}

func (sendConnector) close(tx *transmission) {
	if tx.file != nil {
		tx.file.Close()
		tx.file = nil
	}
}

// service performs one drain attempt. It never blocks and issues at
// most one transport call, the caller re-invokes it on the next
// writability signal. No internal looping: sendfile moves as much of
// the file as the socket accepts, anything short of eof means the
// socket is blocked anyway.
func (sendConnector) service(tx *transmission) {
	q := tx.q

	if tx.finalized {
		return
	}
	if tx.noBody {
		q.discardData()
	}
	if !tx.checkLimit() {
		return
	}
	tx.writeBlocked = false

	if q.vecLen == 0 {
		q.buildVector(tx)
	}

	if q.ioCount > 0 {
		var file *os.File
		if q.ioFile {
			file = tx.file
		}
		written, res, err := tx.conn.transport.SendVec(file, q.ioPos, q.ioCount, q.vec[:q.vecLen])
		if !tx.handleSendResult(written, res, err) {
			return
		}
	}

	if p := q.first(); p != nil && p.kind == packetEnd {
		tx.finalize()
		q.pop()
	}
}

// checkLimit enforces the body size ceiling on every attempt. Exceeding
// it is always terminal: before any byte went out it surfaces as a
// clean too-large failure, after a partial send only an abort is left.
func (tx *transmission) checkLimit() bool {
	if tx.maxBody <= 0 || tx.bytesWritten+tx.q.ioCount <= tx.maxBody {
		return true
	}
	tx.tooLarge = true
	Errorf("Transmission aborted, exceeded max body of %d bytes", tx.maxBody, tx.conn)
	tx.finalize()
	return false
}

// handleSendResult applies the outcome of one transport call. Returns
// true when the attempt made progress and the end-of-queue check should
// run.
func (tx *transmission) handleSendResult(written int64, res network.Result, err error) bool {
	switch res {
	case network.OK:
		if written > 0 {
			tx.bytesWritten += written
			tx.q.commit(written)
		}
		return true
	case network.WouldBlock:
		// Socket full, wait for the next IO event.
		tx.writeBlocked = true
	case network.PeerClosed:
		Debugf("Peer closed during transmission, %d bytes written", tx.bytesWritten, tx.conn)
		tx.conn.disconnect()
		tx.finalize()
	default:
		Errorf("Connector write error: %v", err, tx.conn)
		tx.finalize()
	}
	if res != network.WouldBlock {
		Tracef("connector write error: result %q, written %d", res, tx.bytesWritten, tx.conn)
	}
	return false
}

// commit records bytes accepted by the transport against both views of
// the queue: the packet chain and the IO vector. Both consume the same
// committed count, in wire order, so they cannot drift.
func (q *queue) commit(written int64) {
	q.freePackets(written)
	q.adjustVector(written)
}

// freePackets consumes completed bytes from the queue front. A packet
// drains prefix first, then its extent or content. Only fully drained
// packets leave the queue, a partial one stays at the front for the
// next attempt, and the end marker is never consumed here. The
// transport never reports more bytes than requested, so the count
// always absorbs fully.
func (q *queue) freePackets(bytes int64) {
	for bytes > 0 {
		p := q.first()
		if p == nil || p.kind == packetEnd {
			break
		}
		if l := int64(len(p.prefix)); l > 0 {
			if l > bytes {
				l = bytes
			}
			p.prefix = p.prefix[l:]
			bytes -= l
			// Prefixes never count toward q.count.
			if len(p.prefix) == 0 {
				p.prefix = nil
			}
		}
		if p.esize > 0 {
			l := p.esize
			if l > bytes {
				l = bytes
			}
			p.esize -= l
			p.epos += l
			bytes -= l
		} else if l := int64(len(p.content)); l > 0 {
			if l > bytes {
				l = bytes
			}
			p.content = p.content[l:]
			bytes -= l
			q.count -= l
		}
		if p.empty() {
			q.pop()
		} else {
			break
		}
	}
	if bytes != 0 {
		Errorf("Send accounting left %d bytes unabsorbed", bytes)
	}
}
