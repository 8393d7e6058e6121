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

// No system log on plan9, fall back to stderr.
package logger

import (
	"fmt"
	"os"
)

// SysLogger placeholder
type SysLogger struct {
	debug bool
	trace bool
}

// NewSysLogger creates a placeholder log
func NewSysLogger(debug, trace bool) *SysLogger {
	return &SysLogger{
		debug: debug,
		trace: trace,
	}
}

// NewRemoteSysLogger creates a placeholder remote logger
func NewRemoteSysLogger(fqn string, debug, trace bool) *SysLogger {
	return &SysLogger{
		debug: debug,
		trace: trace,
	}
}

func formatMsg(tag, format string, v ...interface{}) string {
	orig := fmt.Sprintf(format, v...)
	return fmt.Sprintf("pid[%d][%s]: %s", os.Getpid(), tag, orig)
}

// Noticef logs a notice statement
func (l *SysLogger) Noticef(format string, v ...interface{}) {
	fmt.Fprintln(os.Stderr, formatMsg("NOTICE", format, v...))
}

// Fatalf logs a fatal error
func (l *SysLogger) Fatalf(format string, v ...interface{}) {
	msg := formatMsg("FATAL", format, v...)
	fmt.Fprintln(os.Stderr, msg)
	panic(msg)
}

// Errorf logs an error statement
func (l *SysLogger) Errorf(format string, v ...interface{}) {
	fmt.Fprintln(os.Stderr, formatMsg("ERROR", format, v...))
}

// Debugf logs a debug statement
func (l *SysLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		fmt.Fprintln(os.Stderr, formatMsg("DEBUG", format, v...))
	}
}

// Tracef logs a trace statement
func (l *SysLogger) Tracef(format string, v ...interface{}) {
	if l.trace {
		fmt.Fprintln(os.Stderr, formatMsg("TRACE", format, v...))
	}
}
