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
	"time"
)

const (
	VERSION = "0.4.2"

	DEFAULT_PORT = 8080

	// RANDOM_PORT requests a kernel-assigned listen port.
	RANDOM_PORT  = -1
	DEFAULT_HOST = "0.0.0.0"

	// Request line plus one header field must fit in this.
	MAX_CONTROL_LINE_SIZE = 4 * 1024

	// Total size of a request header block.
	MAX_HEADER_SIZE = 16 * 1024

	// Maximum connections default
	DEFAULT_MAX_CONNECTIONS = (64 * 1024)

	// Document info cache entries default
	DEFAULT_CACHE_SIZE = 1024

	// Index document served for directory targets
	DEFAULT_INDEX = "index.html"

	CR_LF     = "\r\n"
	LEN_CR_LF = len(CR_LF)

	// Write deadline used by the blocking fallback transport.
	DEFAULT_FLUSH_DEADLINE = 2 * time.Second
)

const (
	// sendMaxVector is the size of a queue's IO vector. Matches the
	// iovec budget we are willing to hand the kernel per attempt, not
	// the platform IOV_MAX which is far larger.
	sendMaxVector = 16

	// sendVectorLimit leaves two slots spare for trailing chunk
	// framing added after the scan.
	sendVectorLimit = sendMaxVector - 2

	// Read buffer for inbound request bytes.
	defaultBufSize = 32768

	httpTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)
