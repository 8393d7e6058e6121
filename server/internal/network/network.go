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

// Package network is the transport boundary of the outbound pipeline.
// Platform error codes are classified here, into a small closed result
// set, so the pipeline above never inspects errno values.
package network

import (
	"net"
	"os"
	"time"
)

// Result classifies the outcome of one send attempt.
type Result int32

const (
	// OK means bytes were accepted, possibly fewer than requested.
	OK Result = iota

	// WouldBlock means the socket buffer is full and no bytes were
	// accepted. Retry on the next writability signal.
	WouldBlock

	// PeerClosed means the remote end is gone. Expected teardown, not
	// reported as a comms error.
	PeerClosed

	// Fatal is any other transport failure. The connection is unusable.
	Fatal
)

func (r Result) String() string {
	switch r {
	case OK:
		return "ok"
	case WouldBlock:
		return "would block"
	case PeerClosed:
		return "peer closed"
	}
	return "fatal"
}

// Transport performs nonblocking send attempts for one connection.
//
// SendVec hands the kernel the memory entries of vec followed by count
// minus the vector bytes from file starting at pos. It performs at most
// one attempt and never reports more than count bytes written. A nil
// file means a pure memory vector.
//
// AwaitWritable parks the caller until the socket is believed writable
// again. Implementations without writability signaling return
// immediately.
type Transport interface {
	SendVec(file *os.File, pos, count int64, vec [][]byte) (int64, Result, error)
	AwaitWritable() error
}

// New returns the best transport for nc: the raw writev+sendfile one
// for TCP connections, the blocking fallback otherwise.
func New(nc net.Conn, deadline time.Duration) Transport {
	if t, ok := newSockTransport(nc); ok {
		return t
	}
	return NewConnTransport(nc, deadline)
}

func vecBytes(vec [][]byte) int64 {
	var n int64
	for _, b := range vec {
		n += int64(len(b))
	}
	return n
}
