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

//go:build !windows && !plan9

package logger

import (
	"fmt"
	"log"
	"log/syslog"
	"net/url"
)

// SysLogger logs to the local or a remote syslog daemon.
type SysLogger struct {
	writer *syslog.Writer
	debug  bool
	trace  bool
}

// NewSysLogger creates a logger connected to the local syslog daemon.
func NewSysLogger(debug, trace bool) *SysLogger {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_NOTICE, "sluice-server")
	if err != nil {
		log.Fatalf("error connecting to syslog: %v", err)
	}

	return &SysLogger{
		writer: w,
		debug:  debug,
		trace:  trace,
	}
}

// NewRemoteSysLogger creates a logger connected to a remote syslog
// daemon addressed as udp://host:port, tcp://host:port or
// unix:///path.sock.
func NewRemoteSysLogger(fqn string, debug, trace bool) *SysLogger {
	network, addr := getNetworkAndAddr(fqn)
	w, err := syslog.Dial(network, addr, syslog.LOG_DEBUG, "sluice-server")
	if err != nil {
		log.Fatalf("error connecting to syslog: %v", err)
	}

	return &SysLogger{
		writer: w,
		debug:  debug,
		trace:  trace,
	}
}

func getNetworkAndAddr(fqn string) (network, addr string) {
	u, err := url.Parse(fqn)
	if err != nil {
		log.Fatal(err)
	}

	network = u.Scheme
	if network == "" || network == "unix" {
		addr = u.Path
	} else {
		addr = u.Host
	}
	return
}

// Noticef logs a notice statement.
func (l *SysLogger) Noticef(format string, v ...interface{}) {
	l.writer.Notice(fmt.Sprintf(format, v...))
}

// Errorf logs an error statement.
func (l *SysLogger) Errorf(format string, v ...interface{}) {
	l.writer.Err(fmt.Sprintf(format, v...))
}

// Fatalf logs a fatal statement.
func (l *SysLogger) Fatalf(format string, v ...interface{}) {
	l.writer.Crit(fmt.Sprintf(format, v...))
}

// Debugf logs a debug statement if debug is enabled.
func (l *SysLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		l.writer.Debug(fmt.Sprintf(format, v...))
	}
}

// Tracef logs a trace statement if trace is enabled.
func (l *SysLogger) Tracef(format string, v ...interface{}) {
	if l.trace {
		l.writer.Info(fmt.Sprintf(format, v...))
	}
}
