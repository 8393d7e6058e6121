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
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/sluice-io/sluice-server/server/internal/network"
)

// conn is one client connection. Requests are read and answered
// strictly in sequence, so every transmission's queue is touched from a
// single sequential call path and needs no locking.
type conn struct {
	srv       *Server
	cid       uint64
	nc        net.Conn
	transport network.Transport
	br        *bufio.Reader

	mu     sync.Mutex
	closed bool

	requests int64
	outBytes int64
}

func newConn(s *Server, nc net.Conn, cid uint64) *conn {
	return &conn{
		srv:       s,
		cid:       cid,
		nc:        nc,
		transport: network.New(nc, DEFAULT_FLUSH_DEADLINE),
		br:        bufio.NewReaderSize(nc, defaultBufSize),
	}
}

func (c *conn) String() string { return fmt.Sprintf("cid:%d", c.cid) }

// request is the parsed inbound request, just enough surface to drive
// the outbound pipeline.
type request struct {
	method      string
	target      string
	proto       string
	host        string
	keepAlive   bool
	acceptGzip  bool
	ifNoneMatch string
}

func (c *conn) readLoop() {
	defer c.closeConnection()

	for {
		req, status, err := c.readRequest()
		if err != nil {
			if err != io.EOF && !c.isClosed() && status > 0 {
				c.sendError(status, true)
			}
			return
		}
		if !c.respond(req) {
			return
		}
		if c.isClosed() {
			return
		}
	}
}

// readRequest reads one request line plus header block. On a parse
// failure it returns the status the caller should answer with before
// closing.
func (c *conn) readRequest() (*request, int, error) {
	line, err := c.readLine()
	if err != nil {
		if err == bufio.ErrBufferFull {
			return nil, 431, ErrHeaderTooLarge
		}
		return nil, 0, err
	}

	if len(line) > MAX_CONTROL_LINE_SIZE {
		return nil, 431, ErrHeaderTooLarge
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, 400, ErrBadRequest
	}
	req := &request{
		method: parts[0],
		target: parts[1],
		proto:  parts[2],
	}
	switch req.proto {
	case "HTTP/1.1":
		req.keepAlive = true
	case "HTTP/1.0":
		req.keepAlive = false
	default:
		return nil, 400, ErrBadRequest
	}

	total := len(line)
	for {
		line, err = c.readLine()
		if err != nil {
			if err == bufio.ErrBufferFull {
				return nil, 431, ErrHeaderTooLarge
			}
			return nil, 400, ErrBadRequest
		}
		if line == "" {
			break
		}
		total += len(line)
		if total > c.maxHeaderSize() {
			return nil, 431, ErrHeaderTooLarge
		}

		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, 400, ErrBadRequest
		}
		key := strings.ToLower(strings.TrimSpace(line[:i]))
		value := strings.TrimSpace(line[i+1:])

		switch key {
		case "host":
			req.host = value
		case "connection":
			switch strings.ToLower(value) {
			case "close":
				req.keepAlive = false
			case "keep-alive":
				req.keepAlive = true
			}
		case "accept-encoding":
			req.acceptGzip = acceptsGzip(value)
		case "if-none-match":
			req.ifNoneMatch = value
		}
	}

	if req.proto == "HTTP/1.1" && req.host == "" {
		return nil, 400, ErrBadRequest
	}
	return req, 0, nil
}

func (c *conn) readLine() (string, error) {
	b, err := c.br.ReadSlice('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

func (c *conn) maxHeaderSize() int {
	if c.srv != nil {
		return c.srv.opts.MaxHeaderSize
	}
	return MAX_HEADER_SIZE
}

func acceptsGzip(value string) bool {
	for _, enc := range strings.Split(value, ",") {
		enc = strings.TrimSpace(enc)
		if enc == "gzip" || strings.HasPrefix(enc, "gzip;") {
			return true
		}
	}
	return false
}

// respond answers one request. Returns false when the connection must
// not be reused.
func (c *conn) respond(req *request) bool {
	c.requests++

	if req.method != "GET" && req.method != "HEAD" {
		c.sendError(501, !req.keepAlive)
		return req.keepAlive && !c.isClosed()
	}

	doc, status := c.srv.resolveDoc(req.target, req.acceptGzip)
	if status != 200 {
		Debugf("Request for %q refused with %d", req.target, status, c)
		c.sendError(status, !req.keepAlive)
		return req.keepAlive && !c.isClosed()
	}

	tx := c.newTransmission()
	tx.closeAfter = !req.keepAlive
	tx.noBody = req.method == "HEAD"
	tx.setHeader("ETag", doc.etag)
	tx.setHeader("Last-Modified", doc.mtime.UTC().Format(httpTimeFormat))

	if req.ifNoneMatch != "" && req.ifNoneMatch == doc.etag {
		tx.status = 304
		tx.end()
		return c.transmit(tx) && req.keepAlive
	}

	tx.setHeader("Content-Type", doc.contentType)
	if doc.gzip {
		tx.setHeader("Content-Encoding", "gzip")
		tx.setHeader("Vary", "Accept-Encoding")
	}
	tx.setFileBody(doc.path, doc.size)
	tx.end()
	return c.transmit(tx) && req.keepAlive
}

// transmit selects the connector, opens the transmission and drives
// drain attempts to completion.
func (c *conn) transmit(tx *transmission) bool {
	tx.cnt = selectConnector(tx)
	if err := tx.cnt.open(tx); err != nil {
		tx.finalize()
		if tx.tooLarge {
			Errorf("Transmission refused, document exceeds max body of %d bytes", tx.maxBody, c)
			c.sendError(413, true)
			return false
		}
		Errorf("%v", err, c)
		c.sendError(404, tx.closeAfter)
		return !tx.closeAfter && !c.isClosed()
	}

	c.serviceOutput(tx)

	if tx.tooLarge {
		if tx.bytesWritten == 0 {
			c.sendError(413, true)
		}
		return false
	}
	c.outBytes += tx.bytesWritten
	if c.srv != nil {
		c.srv.addStats(1, tx.bytesWritten)
	}
	return !c.isClosed()
}

// serviceOutput drives the transmission: one drain attempt per
// writability signal until it finalizes. The pipeline itself never
// waits, the only suspension is right here between attempts.
func (c *conn) serviceOutput(tx *transmission) {
	for !tx.finalized {
		tx.cnt.service(tx)
		if tx.finalized {
			return
		}
		if tx.writeBlocked {
			if err := c.transport.AwaitWritable(); err != nil {
				Debugf("%v: %v", ErrConnectionClosed, err, c)
				c.disconnect()
				tx.finalize()
				return
			}
		}
	}
}

// sendError answers with a small materialized error page through the
// generic connector.
func (c *conn) sendError(status int, closeAfter bool) {
	tx := c.newTransmission()
	tx.status = status
	tx.closeAfter = closeAfter
	tx.setHeader("Content-Type", "text/html; charset=utf-8")
	tx.appendBody([]byte(fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><h1>%d %s</h1></body></html>\n",
		status, statusText(status), status, statusText(status))))
	tx.end()
	tx.cnt = selectConnector(tx)
	c.serviceOutput(tx)
	if c.srv != nil {
		c.srv.addStats(1, tx.bytesWritten)
	}
	if closeAfter {
		c.closeConnection()
	}
}

// outputFinalized is the signal that a transmission has delivered all
// of its output, or abandoned it for good.
func (c *conn) outputFinalized(tx *transmission) {
	Tracef("Transmission finalized, %d bytes written", tx.bytesWritten, c)
}

// disconnect tears the connection down after the peer went away.
func (c *conn) disconnect() {
	c.closeConnection()
}

func (c *conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *conn) closeConnection() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	nc := c.nc
	c.mu.Unlock()

	Debugf("Connection closed", c)

	if nc != nil {
		nc.Close()
	}
	if c.srv != nil {
		c.srv.removeConn(c)
	}
}
