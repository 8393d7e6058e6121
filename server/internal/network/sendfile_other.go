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

//go:build !linux && !windows

package network

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Read chunk for platforms without a usable sendfile. Still one write
// attempt per invocation, just with a bounce buffer.
const sendFileChunk = 256 << 10

func sendFile(fd int, f *os.File, pos int64, remain int64) (int64, error) {
	n := remain
	if n > sendFileChunk {
		n = sendFileChunk
	}
	buf := make([]byte, n)
	r, err := f.ReadAt(buf, pos)
	if r == 0 {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}
	for {
		w, werr := unix.Write(fd, buf[:r])
		if werr == unix.EINTR {
			continue
		}
		if w < 0 {
			w = 0
		}
		return int64(w), werr
	}
}
