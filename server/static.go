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
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/highwayhash"
)

// document is a resolved static target, possibly its gzip sidecar.
type document struct {
	path        string
	size        int64
	mtime       time.Time
	etag        string
	contentType string
	gzip        bool
}

// docInfo is the cached per-path metadata. Entries are validated
// against a fresh stat before use, the cache only saves the hash work.
type docInfo struct {
	size  int64
	mtime time.Time
	etag  string
}

// resolveDoc maps a request target to a document under the docroot.
// Returns the document and an HTTP status, document is nil unless the
// status is 200.
func (s *Server) resolveDoc(target string, acceptGzip bool) (*document, int) {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	target, err := url.PathUnescape(target)
	if err != nil {
		return nil, 400
	}

	clean := path.Clean("/" + target)
	fsPath := filepath.Join(s.docRoot, filepath.FromSlash(clean))
	if fsPath != s.docRoot && !strings.HasPrefix(fsPath, s.docRoot+string(os.PathSeparator)) {
		return nil, 403
	}

	fi, err := os.Stat(fsPath)
	if err == nil && fi.IsDir() {
		fsPath = filepath.Join(fsPath, s.opts.Index)
		fi, err = os.Stat(fsPath)
	}
	if err != nil {
		if os.IsPermission(err) {
			return nil, 403
		}
		return nil, 404
	}
	if !fi.Mode().IsRegular() {
		return nil, 403
	}

	doc := &document{
		path:        fsPath,
		size:        fi.Size(),
		mtime:       fi.ModTime(),
		etag:        s.docEtag(fsPath, fi),
		contentType: contentTypeFor(fsPath),
	}

	if acceptGzip {
		if gz, err := os.Stat(fsPath + ".gz"); err == nil && gz.Mode().IsRegular() && !gz.ModTime().Before(doc.mtime) {
			doc.path = fsPath + ".gz"
			doc.size = gz.Size()
			doc.gzip = true
		}
	}
	return doc, 200
}

// docEtag returns a strong validator for the document, derived from
// path, size and mtime. Hashes are cached per path and recomputed when
// the document changes.
func (s *Server) docEtag(fsPath string, fi os.FileInfo) string {
	if info, ok := s.docCache.Get(fsPath); ok {
		if info.size == fi.Size() && info.mtime.Equal(fi.ModTime()) {
			return info.etag
		}
	}
	h := highwayhash.Sum64(
		[]byte(fmt.Sprintf("%s:%d:%d", fsPath, fi.Size(), fi.ModTime().UnixNano())),
		s.hashKey[:])
	etag := fmt.Sprintf("\"%x-%x\"", fi.Size(), h)
	s.docCache.Add(fsPath, &docInfo{size: fi.Size(), mtime: fi.ModTime(), etag: etag})
	return etag
}

var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".xml":   "application/xml",
	".txt":   "text/plain; charset=utf-8",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".ico":   "image/x-icon",
	".webp":  "image/webp",
	".pdf":   "application/pdf",
	".wasm":  "application/wasm",
	".woff2": "font/woff2",
}

func contentTypeFor(fsPath string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fsPath))]; ok {
		return ct
	}
	return "application/octet-stream"
}
