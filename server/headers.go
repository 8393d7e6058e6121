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
	"strconv"
	"time"
)

// writeHeaders materializes the header packet: status line, standard
// fields, response fields, framing. Called from the vector build pass,
// exactly once per transmission.
func (tx *transmission) writeHeaders(p *packet) {
	if tx.headersDone {
		return
	}
	tx.headersDone = true

	b := make([]byte, 0, 256)
	b = append(b, "HTTP/1.1 "...)
	b = strconv.AppendInt(b, int64(tx.status), 10)
	b = append(b, ' ')
	b = append(b, statusText(tx.status)...)
	b = append(b, CR_LF...)

	b = append(b, "Server: sluice-server/"...)
	b = append(b, VERSION...)
	b = append(b, CR_LF...)

	b = append(b, "Date: "...)
	b = append(b, time.Now().UTC().Format(httpTimeFormat)...)
	b = append(b, CR_LF...)

	for _, f := range tx.hdr {
		b = append(b, f.key...)
		b = append(b, ": "...)
		b = append(b, f.value...)
		b = append(b, CR_LF...)
	}

	if tx.bodyAllowed() {
		if tx.chunked {
			b = append(b, "Transfer-Encoding: chunked"...)
			b = append(b, CR_LF...)
		} else {
			b = append(b, "Content-Length: "...)
			b = strconv.AppendInt(b, tx.declaredLength(), 10)
			b = append(b, CR_LF...)
		}
	}

	if tx.closeAfter {
		b = append(b, "Connection: close"...)
	} else {
		b = append(b, "Connection: keep-alive"...)
	}
	b = append(b, CR_LF...)
	b = append(b, CR_LF...)

	p.content = b
	tx.q.count += int64(len(b))
}

// bodyAllowed reports whether this status carries body framing at all.
// HEAD responses still advertise the length of the body they withhold.
func (tx *transmission) bodyAllowed() bool {
	if tx.status == 304 || tx.status == 204 || tx.status/100 == 1 {
		return false
	}
	return true
}

// declaredLength is the Content-Length value: the file size for
// file-backed bodies, otherwise the materialized body bytes queued so
// far. Callers using identity framing queue the whole body before the
// first drain.
func (tx *transmission) declaredLength() int64 {
	if tx.filename != "" {
		return tx.fileSize
	}
	var n int64
	for _, p := range tx.q.packets {
		if p.kind == packetData {
			n += int64(len(p.content))
		}
	}
	return n
}

// chunkPrefix returns the chunk-size line for a chunk of n bytes. The
// CRLF terminating the previous chunk rides in front of the next size
// line, so each body packet needs only a single prefix entry.
func (tx *transmission) chunkPrefix(n int64) []byte {
	b := make([]byte, 0, 18)
	if !tx.firstChunk {
		b = append(b, CR_LF...)
	}
	tx.firstChunk = false
	b = strconv.AppendInt(b, n, 16)
	b = append(b, CR_LF...)
	return b
}

// finalChunk terminates the chunked body, closing the last chunk if
// there was one.
func (tx *transmission) finalChunk() []byte {
	if tx.firstChunk {
		return []byte("0" + CR_LF + CR_LF)
	}
	return []byte(CR_LF + "0" + CR_LF + CR_LF)
}

func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 204:
		return "No Content"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 413:
		return "Request Entity Too Large"
	case 431:
		return "Request Header Fields Too Large"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	}
	return "Unknown"
}
