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

package network

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
	"time"
)

// connTransport is the portable fallback over any net.Conn. Writes
// block, bounded by a per-attempt deadline. A deadline expiry is a slow
// consumer, which is fatal for the connection, there is no writability
// signal to wait on.
type connTransport struct {
	nc  net.Conn
	wdl time.Duration
}

// NewConnTransport returns a Transport writing through nc. A zero
// deadline disables the per-attempt write deadline.
func NewConnTransport(nc net.Conn, deadline time.Duration) Transport {
	return &connTransport{nc: nc, wdl: deadline}
}

func (t *connTransport) SendVec(file *os.File, pos, count int64, vec [][]byte) (int64, Result, error) {
	var written int64

	if t.wdl > 0 {
		t.nc.SetWriteDeadline(time.Now().Add(t.wdl))
		defer t.nc.SetWriteDeadline(time.Time{})
	}

	if len(vec) > 0 {
		// WriteTo consumes its receiver, keep ours intact.
		bufs := make(net.Buffers, len(vec))
		copy(bufs, vec)
		n, err := bufs.WriteTo(t.nc)
		written += n
		if err != nil {
			return written, errResult(err), err
		}
	}
	if file != nil && count > written {
		n, err := io.Copy(t.nc, io.NewSectionReader(file, pos, count-written))
		written += n
		if err != nil {
			return written, errResult(err), err
		}
	}
	return written, OK, nil
}

// AwaitWritable is a no-op, writes above already block.
func (t *connTransport) AwaitWritable() error { return nil }

func errResult(err error) Result {
	switch {
	case errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.ENOTCONN),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed):
		return PeerClosed
	}
	return Fatal
}
