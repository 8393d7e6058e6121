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

package main

import (
	"flag"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/sluice-io/sluice-server/logger"
	"github.com/sluice-io/sluice-server/server"
)

var usageStr = `
Usage: sluice-server [options]

Server Options:
    -a, --addr <host>        Bind to host address (default: 0.0.0.0)
    -p, --port <port>        Use port for clients (default: 8080)
    -d, --docroot <dir>      Directory of documents to serve (default: .)
    -m, --max_body <bytes>   Maximum response body size (default: unlimited)
    -z, --precompress        Build gzip sidecars for documents at startup
        --accept_rate <n>    Accepted connections per second (default: unlimited)

Logging Options:
    -l, --log <file>         File to redirect log output
    -T, --logtime            Timestamp log entries (default: true)
    -s, --syslog             Enable syslog as log method
    -D, --debug              Enable debugging output
    -V, --trace              Trace the raw protocol
    -DV                      Debug and trace
`

func usage() {
	fmt.Printf("%s\n", usageStr)
	os.Exit(0)
}

func main() {
	opts := server.Options{}

	var (
		showVersion   bool
		debugAndTrace bool
		useSyslog     bool
	)

	flag.IntVar(&opts.Port, "port", 0, "Port to listen on.")
	flag.IntVar(&opts.Port, "p", 0, "Port to listen on.")
	flag.StringVar(&opts.Host, "addr", "", "Network host to listen on.")
	flag.StringVar(&opts.Host, "a", "", "Network host to listen on.")
	flag.StringVar(&opts.DocRoot, "docroot", "", "Directory of documents to serve.")
	flag.StringVar(&opts.DocRoot, "d", "", "Directory of documents to serve.")
	flag.Int64Var(&opts.MaxBodySize, "max_body", 0, "Maximum response body size.")
	flag.Int64Var(&opts.MaxBodySize, "m", 0, "Maximum response body size.")
	flag.BoolVar(&opts.Precompress, "precompress", false, "Build gzip sidecars at startup.")
	flag.BoolVar(&opts.Precompress, "z", false, "Build gzip sidecars at startup.")
	flag.Float64Var(&opts.AcceptRate, "accept_rate", 0, "Accepted connections per second.")
	flag.BoolVar(&opts.Debug, "D", false, "Enable Debug logging.")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable Debug logging.")
	flag.BoolVar(&opts.Trace, "V", false, "Enable Trace logging.")
	flag.BoolVar(&opts.Trace, "trace", false, "Enable Trace logging.")
	flag.BoolVar(&debugAndTrace, "DV", false, "Enable Debug and Trace logging.")
	flag.BoolVar(&opts.Logtime, "T", true, "Timestamp log entries.")
	flag.BoolVar(&opts.Logtime, "logtime", true, "Timestamp log entries.")
	flag.StringVar(&opts.LogFile, "l", "", "File to store logging output.")
	flag.StringVar(&opts.LogFile, "log", "", "File to store logging output.")
	flag.BoolVar(&useSyslog, "s", false, "Enable syslog as log method.")
	flag.BoolVar(&useSyslog, "syslog", false, "Enable syslog as log method.")
	flag.BoolVar(&showVersion, "version", false, "Print version information.")
	flag.BoolVar(&showVersion, "v", false, "Print version information.")

	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("sluice-server version %s\n", server.VERSION)
		os.Exit(0)
	}
	if debugAndTrace {
		opts.Trace, opts.Debug = true, true
	}

	s := server.New(&opts)

	var l server.Logger
	switch {
	case opts.NoLog:
	case useSyslog:
		l = logger.NewSysLogger(opts.Debug, opts.Trace)
	case opts.LogFile != "":
		l = logger.NewFileLogger(opts.LogFile, opts.Logtime, opts.Debug, opts.Trace, true)
	default:
		l = logger.NewStdLogger(opts.Logtime, opts.Debug, opts.Trace, false)
	}
	if l != nil {
		s.SetLogger(l, opts.Debug, opts.Trace)
	}

	s.Start()
}
