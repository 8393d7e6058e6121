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

package logger

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStdLogger(t *testing.T) {
	logger := NewStdLogger(false, false, false, false)

	if flags := logger.logger.Flags(); flags != 0 {
		t.Fatalf("Expected %q, received %q\n", 0, flags)
	}
	if logger.debug {
		t.Fatalf("Expected %t, received %t\n", false, logger.debug)
	}
	if logger.trace {
		t.Fatalf("Expected %t, received %t\n", false, logger.trace)
	}
}

func TestStdLoggerWithDebugTraceAndTime(t *testing.T) {
	logger := NewStdLogger(true, true, true, false)

	if flags := logger.logger.Flags(); flags != log.LstdFlags {
		t.Fatalf("Expected %d, received %d\n", log.LstdFlags, flags)
	}
	if !logger.debug {
		t.Fatalf("Expected %t, received %t\n", true, logger.debug)
	}
	if !logger.trace {
		t.Fatalf("Expected %t, received %t\n", true, logger.trace)
	}
}

func TestStdLoggerNotice(t *testing.T) {
	expectOutput(t, func() {
		logger := NewStdLogger(false, false, false, false)
		logger.Noticef("foo")
	}, "[INF] foo\n")
}

func TestStdLoggerDebug(t *testing.T) {
	expectOutput(t, func() {
		logger := NewStdLogger(false, true, false, false)
		logger.Debugf("foo %s", "bar")
	}, "[DBG] foo bar\n")
}

func TestStdLoggerDebugWithOutDebug(t *testing.T) {
	expectOutput(t, func() {
		logger := NewStdLogger(false, false, false, false)
		logger.Debugf("foo")
	}, "")
}

func TestStdLoggerTrace(t *testing.T) {
	expectOutput(t, func() {
		logger := NewStdLogger(false, false, true, false)
		logger.Tracef("foo")
	}, "[TRC] foo\n")
}

func TestStdLoggerTraceWithOutTrace(t *testing.T) {
	expectOutput(t, func() {
		logger := NewStdLogger(false, false, false, false)
		logger.Tracef("foo")
	}, "")
}

func TestFileLogger(t *testing.T) {
	tmpDir := t.TempDir()

	file := filepath.Join(tmpDir, "sluice.log")
	logger := NewFileLogger(file, false, false, false, false)
	logger.Noticef("foo")

	buf, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Could not read logfile: %v", err)
	}
	if string(buf) != "[INF] foo\n" {
		t.Fatalf("Expected '%s', received '%s'\n", "[INF] foo", string(buf))
	}

	file = filepath.Join(tmpDir, "sluice_pid.log")
	logger = NewFileLogger(file, true, true, true, true)
	logger.Errorf("foo")

	buf, err = os.ReadFile(file)
	if err != nil {
		t.Fatalf("Could not read logfile: %v", err)
	}
	str := string(buf)
	pidEnd := strings.Index(str, " ")
	if pidEnd == -1 {
		t.Fatalf("Expected '[pid] <date> [ERR] foo', received '%s'\n", str)
	}
	pid := str[0:pidEnd]
	if pid[0] != '[' || pid[len(pid)-1] != ']' {
		t.Fatalf("Expected a pid prefix, received '%s'\n", str)
	}
	if !strings.HasSuffix(str, "[ERR] foo\n") {
		t.Fatalf("Expected '[ERR] foo' suffix, received '%s'\n", str)
	}
}

func expectOutput(t *testing.T, f func(), expected string) {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	os.Stderr.Close()
	os.Stderr = old
	out := <-outC
	if out != expected {
		t.Fatalf("Expected '%s', received '%s'\n", expected, out)
	}
}
