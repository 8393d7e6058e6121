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
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nats-io/nuid"
	"golang.org/x/time/rate"
)

// Server is a static document server built around the outbound send
// pipeline.
type Server struct {
	id       string
	opts     *Options
	docRoot  string // cleaned absolute-ish docroot, containment anchor
	docCache *lru.Cache[string, *docInfo]
	hashKey  [32]byte

	mu       sync.Mutex
	running  bool
	listener net.Listener
	gcid     uint64
	conns    map[uint64]*conn
	done     chan bool
	start    time.Time

	throttle *rate.Limiter

	stats
}

type stats struct {
	connections int64
	requests    int64
	outBytes    int64
}

// New creates a server from opts, filling in defaults.
func New(opts *Options) *Server {
	processOptions(opts)

	cache, _ := lru.New[string, *docInfo](opts.CacheSize)

	s := &Server{
		id:       nuid.Next(),
		opts:     opts,
		docRoot:  filepath.Clean(opts.DocRoot),
		docCache: cache,
		conns:    make(map[uint64]*conn),
		done:     make(chan bool, 1),
		start:    time.Now(),
	}
	rand.Read(s.hashKey[:])

	if opts.AcceptRate > 0 {
		s.throttle = rate.NewLimiter(rate.Limit(opts.AcceptRate), int(opts.AcceptRate)+1)
	}

	s.handleSignals()

	return s
}

// Signal Handling
func (s *Server) handleSignals() {
	if s.opts.NoSigs {
		return
	}
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for sig := range c {
			Debugf("Trapped Signal; %v", sig)
			Noticef("Server Exiting..")
			os.Exit(0)
		}
	}()
}

// Start runs the optional precompression pass and enters the accept
// loop. It does not return until the server shuts down.
func (s *Server) Start() {
	Noticef("Starting sluice-server version %s", VERSION)
	Debugf("Server id is %s", s.id)

	if s.opts.Precompress {
		if err := s.precompress(); err != nil {
			Errorf("Precompress pass failed: %v", err)
		}
	}

	s.AcceptLoop()
}

// Shutdown will shutdown the server instance by kicking out the
// AcceptLoop and closing all associated connections.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()

	for _, c := range conns {
		c.closeConnection()
	}
	if listener != nil {
		listener.Close()
	}
	<-s.done
}

// AcceptLoop listens and serves connections until shutdown.
func (s *Server) AcceptLoop() {
	hp := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	l, e := net.Listen("tcp", hp)
	if e != nil {
		Fatalf("Error listening on port: %d - %v", s.opts.Port, e)
		return
	}
	Noticef("Listening for connections on %s, serving %s", hp, s.docRoot)

	s.mu.Lock()
	s.listener = l
	s.running = true
	s.mu.Unlock()

	for s.isRunning() {
		if s.throttle != nil {
			s.throttle.Wait(context.Background())
		}
		nc, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				Errorf("Accept error: %v", err)
				continue
			}
			break
		}
		if !s.createConn(nc) {
			nc.Close()
		}
	}
	s.done <- true
	Noticef("Server Exiting..")
}

// Addr returns the listen address, nil when the server is not
// listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// createConn registers a connection and spins up its read loop. Returns
// false if the connection cap is reached.
func (s *Server) createConn(nc net.Conn) bool {
	s.mu.Lock()
	if len(s.conns) >= s.opts.MaxConn {
		s.mu.Unlock()
		Errorf("Maximum connections exceeded, dropping %v", nc.RemoteAddr())
		return false
	}
	s.gcid++
	cid := s.gcid
	s.mu.Unlock()

	c := newConn(s, nc, cid)

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.conns[cid] = c
	s.connections++
	s.mu.Unlock()

	Debugf("Connection created", c)

	go c.readLoop()
	return true
}

func (s *Server) removeConn(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.cid)
	s.mu.Unlock()
}

func (s *Server) addStats(requests, outBytes int64) {
	s.mu.Lock()
	s.requests += requests
	s.outBytes += outBytes
	s.mu.Unlock()
}
