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

import "errors"

var (
	// ErrConnectionClosed represents an error condition on a closed connection.
	ErrConnectionClosed = errors.New("Connection Closed")

	// ErrBodyTooLarge represents a transmission whose body exceeds the
	// configured maximum body size.
	ErrBodyTooLarge = errors.New("Maximum Body Size Exceeded")

	// ErrDocumentNotFound represents a document that could not be opened
	// for a file-backed transmission.
	ErrDocumentNotFound = errors.New("Document Not Found")

	// ErrBadRequest represents an inbound request that could not be parsed.
	ErrBadRequest = errors.New("Bad Request")

	// ErrHeaderTooLarge represents a request header block over the limit.
	ErrHeaderTooLarge = errors.New("Request Header Too Large")

	// ErrTransmissionFinalized is returned when packets are appended to a
	// transmission that has already finalized.
	ErrTransmissionFinalized = errors.New("Transmission Finalized")
)
