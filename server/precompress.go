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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Extensions worth a gzip sidecar. Everything else is assumed already
// compressed or binary.
var precompressExts = map[string]bool{
	".html": true,
	".htm":  true,
	".css":  true,
	".js":   true,
	".json": true,
	".xml":  true,
	".txt":  true,
	".svg":  true,
	".wasm": true,
}

// precompress walks the docroot and builds .gz sidecars for documents
// over the size threshold. Compressed variants stay plain files, so
// they leave through the same sendfile path as everything else, the
// server never compresses on the fly. Stale sidecars are rebuilt,
// current ones are left alone.
func (s *Server) precompress() error {
	minSize := s.opts.PrecompressMinSize
	built := 0

	err := filepath.Walk(s.docRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() || fi.Size() < minSize {
			return nil
		}
		if !precompressExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		gzPath := path + ".gz"
		if gz, err := os.Stat(gzPath); err == nil && !gz.ModTime().Before(fi.ModTime()) {
			return nil
		}
		if err := buildSidecar(path, gzPath); err != nil {
			return err
		}
		built++
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "precompress")
	}
	if built > 0 {
		Noticef("Precompressed %d documents under %s", built, s.docRoot)
	}
	return nil
}

func buildSidecar(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}

	zw, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if _, err = io.Copy(zw, in); err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "compress %s", src)
	}
	return errors.Wrapf(os.Rename(tmp, dst), "rename %s", tmp)
}
