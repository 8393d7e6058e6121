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

//go:build !windows

package network

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sockTransport issues raw nonblocking writev/sendfile calls against a
// TCP socket. The runtime poller supplies writability notifications
// through the RawConn write callback.
type sockTransport struct {
	rc syscall.RawConn
}

func newSockTransport(nc net.Conn) (Transport, bool) {
	tc, ok := nc.(*net.TCPConn)
	if !ok {
		return nil, false
	}
	rc, err := tc.SyscallConn()
	if err != nil {
		return nil, false
	}
	return &sockTransport{rc: rc}, true
}

// SendVec performs one attempt: writev of the memory entries, then, if
// they were fully accepted, one sendfile chunk of the trailing extent.
func (t *sockTransport) SendVec(file *os.File, pos, count int64, vec [][]byte) (int64, Result, error) {
	var (
		written int64
		res     = OK
		sysErr  error
	)
	memBytes := vecBytes(vec)

	cbErr := t.rc.Write(func(fd uintptr) bool {
		if len(vec) > 0 {
			n, err := writev(int(fd), vec)
			if n > 0 {
				written += int64(n)
			}
			if err != nil {
				res = errnoResult(err)
				sysErr = err
				return true
			}
			if written < memBytes {
				// Socket is full, don't bother with the file.
				return true
			}
		}
		if file != nil && count > written {
			n, err := sendFile(int(fd), file, pos, count-written)
			if n > 0 {
				written += n
			}
			if err != nil {
				res = errnoResult(err)
				sysErr = err
			}
		}
		return true
	})

	if cbErr != nil && res == OK {
		return written, Fatal, cbErr
	}
	if written > 0 && res == WouldBlock {
		// Partial progress counts as success, the caller will get the
		// would-block on its next attempt.
		return written, OK, nil
	}
	return written, res, sysErr
}

// AwaitWritable parks on the runtime poller until the socket has write
// capacity again.
func (t *sockTransport) AwaitWritable() error {
	first := true
	return t.rc.Write(func(fd uintptr) bool {
		if first {
			first = false
			return false
		}
		return true
	})
}

func writev(fd int, vec [][]byte) (int, error) {
	for {
		n, err := unix.Writev(fd, vec)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

func errnoResult(err error) Result {
	errno, ok := err.(unix.Errno)
	if !ok {
		return Fatal
	}
	switch errno {
	case unix.EAGAIN:
		return WouldBlock
	case unix.EPIPE, unix.ECONNRESET, unix.ECONNABORTED, unix.ENOTCONN:
		return PeerClosed
	}
	return Fatal
}
