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
)

// transmission is one response body's end-to-end send lifecycle, from
// file open, if any, to finalize. It owns its queue and its open file
// handle exclusively.
type transmission struct {
	conn *conn
	q    *queue
	cnt  connector

	// File-backed body, valid when filename is set. The handle is
	// opened by the connector at open time and closed exactly once.
	filename string
	fileSize int64
	file     *os.File

	status      int
	hdr         []headerField
	chunked     bool
	noBody      bool
	headersDone bool
	closeAfter  bool // Connection: close on this response
	firstChunk  bool

	bytesWritten int64
	maxBody      int64 // 0 means unlimited

	writeBlocked bool
	tooLarge     bool
	finalized    bool
}

type headerField struct {
	key   string
	value string
}

func (c *conn) newTransmission() *transmission {
	tx := &transmission{
		conn:       c,
		q:          newQueue(),
		cnt:        netConn,
		status:     200,
		firstChunk: true,
	}
	if c.srv != nil {
		tx.maxBody = c.srv.opts.MaxBodySize
	}
	// Headers are materialized lazily during the first vector build.
	tx.q.push(&packet{kind: packetHeader})
	return tx
}

func (tx *transmission) setHeader(key, value string) {
	tx.hdr = append(tx.hdr, headerField{key, value})
}

// setFileBody queues the document body as a virtual extent. No bytes
// are read into memory, the transport moves them straight from the
// page cache.
func (tx *transmission) setFileBody(path string, size int64) {
	tx.filename = path
	tx.fileSize = size
	p := &packet{kind: packetData, esize: size}
	if tx.chunked && size > 0 {
		p.prefix = tx.chunkPrefix(size)
	}
	tx.q.push(p)
}

// appendBody queues materialized body bytes.
func (tx *transmission) appendBody(b []byte) error {
	if tx.finalized {
		return ErrTransmissionFinalized
	}
	if len(b) == 0 {
		return nil
	}
	p := &packet{kind: packetData, content: b}
	if tx.chunked {
		p.prefix = tx.chunkPrefix(int64(len(b)))
	}
	tx.q.push(p)
	return nil
}

// end closes the body and queues the end marker. For chunked
// transmissions the terminating chunk goes in first.
func (tx *transmission) end() {
	if tx.chunked {
		tx.q.push(&packet{kind: packetData, content: tx.finalChunk()})
	}
	tx.q.push(&packet{kind: packetEnd})
}

// finalize signals that all output has been delivered or permanently
// abandoned. Fires exactly once, releases the file handle, and makes
// every further drain call a no-op.
func (tx *transmission) finalize() {
	if tx.finalized {
		return
	}
	tx.finalized = true
	tx.cnt.close(tx)
	tx.conn.outputFinalized(tx)
}
