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
	"net"
	"testing"
	"time"
)

// RunServer starts a server on a random port and waits until it accepts
// connections.
func RunServer(t *testing.T, opts *Options) *Server {
	t.Helper()
	if opts == nil {
		opts = &Options{Host: "127.0.0.1", Port: RANDOM_PORT, DocRoot: t.TempDir(), NoSigs: true, NoLog: true}
	}
	s := New(opts)

	go s.Start()

	end := time.Now().Add(10 * time.Second)
	for time.Now().Before(end) {
		addr := s.Addr()
		if addr == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		conn, err := net.Dial("tcp", addr.String())
		if err != nil {
			time.Sleep(25 * time.Millisecond)
			continue
		}
		conn.Close()
		return s
	}
	t.Fatal("Unable to start the server")
	return nil
}

func TestStartupAndShutdown(t *testing.T) {
	s := RunServer(t, nil)

	if !s.isRunning() {
		t.Fatal("server not running after startup")
	}
	if s.Addr() == nil {
		t.Fatal("no listen address")
	}
	if s.id == "" {
		t.Fatal("server id not assigned")
	}

	s.Shutdown()
	if s.isRunning() {
		t.Fatal("server still running after shutdown")
	}
	if s.Addr() != nil {
		t.Fatal("listener survived shutdown")
	}
}

func TestMaxConnections(t *testing.T) {
	opts := &Options{Host: "127.0.0.1", Port: RANDOM_PORT, DocRoot: t.TempDir(), NoSigs: true, MaxConn: 2}
	s := RunServer(t, opts)
	defer s.Shutdown()

	addr := s.Addr().String()
	c1, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c1.Close()
	c2, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	// Give the server a moment to register both.
	time.Sleep(50 * time.Millisecond)

	c3, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c3.Close()

	// The connection over the cap is closed without a response.
	c3.SetReadDeadline(time.Now().Add(2 * time.Second))
	var buf [1]byte
	if _, err := c3.Read(buf[:]); err == nil {
		t.Fatal("expected the over-cap connection to be dropped")
	}
}

func TestStatsTracking(t *testing.T) {
	opts := &Options{Host: "127.0.0.1", Port: RANDOM_PORT, DocRoot: t.TempDir(), NoSigs: true}
	s := RunServer(t, opts)
	defer s.Shutdown()

	writeDoc(t, s.docRoot+"/x.txt", []byte("xy"))

	nc, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer nc.Close()
	nc.Write([]byte("GET /x.txt HTTP/1.1\r\nHost: t\r\nConnection: close\r\n\r\n"))

	buf := make([]byte, 4096)
	nc.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, err := nc.Read(buf); err != nil {
			break
		}
	}

	s.mu.Lock()
	requests, outBytes := s.requests, s.outBytes
	s.mu.Unlock()
	if requests < 1 {
		t.Fatalf("requests %d, want at least 1", requests)
	}
	if outBytes <= 2 {
		t.Fatalf("outBytes %d, want headers plus body", outBytes)
	}
}
