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

// Options block for the sluice server.
type Options struct {
	Host    string `json:"addr"`
	Port    int    `json:"port"`
	DocRoot string `json:"doc_root"`
	Index   string `json:"index"`

	Trace   bool `json:"-"`
	Debug   bool `json:"-"`
	NoLog   bool `json:"-"`
	NoSigs  bool `json:"-"`
	Logtime bool `json:"-"`

	MaxConn       int   `json:"max_connections"`
	MaxBodySize   int64 `json:"max_body_size"` // 0 means unlimited
	MaxHeaderSize int   `json:"max_header_size"`
	CacheSize     int   `json:"cache_size"`

	// Accepted connections per second, 0 disables the throttle.
	AcceptRate float64 `json:"accept_rate"`

	Precompress        bool  `json:"precompress"`
	PrecompressMinSize int64 `json:"precompress_min_size"`

	LogFile string `json:"-"`
	PidFile string `json:"-"`
}

func processOptions(opts *Options) {
	// Setup non-standard Go defaults
	if opts.Host == "" {
		opts.Host = DEFAULT_HOST
	}
	if opts.Port == 0 {
		opts.Port = DEFAULT_PORT
	} else if opts.Port == RANDOM_PORT {
		// Choose randomly inside of net.Listen
		opts.Port = 0
	}
	if opts.DocRoot == "" {
		opts.DocRoot = "."
	}
	if opts.Index == "" {
		opts.Index = DEFAULT_INDEX
	}
	if opts.MaxConn == 0 {
		opts.MaxConn = DEFAULT_MAX_CONNECTIONS
	}
	if opts.MaxHeaderSize == 0 {
		opts.MaxHeaderSize = MAX_HEADER_SIZE
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = DEFAULT_CACHE_SIZE
	}
	if opts.PrecompressMinSize == 0 {
		opts.PrecompressMinSize = 1024
	}
}
