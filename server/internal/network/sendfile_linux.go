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

//go:build linux

package network

import (
	"os"

	"golang.org/x/sys/unix"
)

// maxSendfileSize is the largest chunk we ask the kernel to move per
// attempt, so one huge extent cannot monopolize the write path.
const maxSendfileSize = 4 << 20

// sendFile moves up to remain bytes of f at pos to the socket without
// staging them in user space. One kernel call per invocation.
func sendFile(fd int, f *os.File, pos int64, remain int64) (int64, error) {
	n := remain
	if n > maxSendfileSize {
		n = maxSendfileSize
	}
	for {
		w, err := unix.Sendfile(fd, int(f.Fd()), &pos, int(n))
		if err == unix.EINTR {
			continue
		}
		if w < 0 {
			w = 0
		}
		return int64(w), err
	}
}
