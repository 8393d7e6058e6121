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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, docRoot string) *Server {
	t.Helper()
	return New(&Options{DocRoot: docRoot, NoSigs: true, Port: RANDOM_PORT})
}

func TestResolveDoc(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "page.html"), []byte("<html></html>"))
	s := newTestServer(t, dir)

	doc, status := s.resolveDoc("/page.html", false)
	if status != 200 {
		t.Fatalf("status %d, want 200", status)
	}
	if doc.size != 13 {
		t.Fatalf("size %d, want 13", doc.size)
	}
	if doc.contentType != "text/html; charset=utf-8" {
		t.Fatalf("content type %q", doc.contentType)
	}
	if doc.etag == "" {
		t.Fatal("missing etag")
	}
}

func TestResolveDocQueryStripped(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "page.html"), []byte("x"))
	s := newTestServer(t, dir)

	if _, status := s.resolveDoc("/page.html?v=2&x=%20", false); status != 200 {
		t.Fatalf("status %d, want 200", status)
	}
}

func TestResolveDocNotFound(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	if _, status := s.resolveDoc("/missing.html", false); status != 404 {
		t.Fatalf("status %d, want 404", status)
	}
}

func TestResolveDocTraversal(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "ok.txt"), []byte("ok"))
	s := newTestServer(t, dir)

	// Dot segments collapse inside the virtual root, they cannot climb
	// above it.
	for _, target := range []string{
		"/../ok.txt",
		"/../../etc/passwd",
		"/a/../../ok.txt",
		"/%2e%2e/%2e%2e/etc/passwd",
	} {
		doc, status := s.resolveDoc(target, false)
		if status == 200 && !strings.HasPrefix(doc.path, dir+string(os.PathSeparator)) {
			t.Fatalf("target %q escaped the docroot: %s", target, doc.path)
		}
	}

	if _, status := s.resolveDoc("/ok.txt", false); status != 200 {
		t.Fatal("plain target must still resolve")
	}
}

func TestResolveDocIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeDoc(t, filepath.Join(dir, "sub", "index.html"), []byte("idx"))
	s := newTestServer(t, dir)

	doc, status := s.resolveDoc("/sub", false)
	if status != 200 {
		t.Fatalf("status %d, want 200", status)
	}
	if filepath.Base(doc.path) != "index.html" {
		t.Fatalf("resolved %q, want directory index", doc.path)
	}

	// Directory without an index.
	if err := os.Mkdir(filepath.Join(dir, "bare"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, status := s.resolveDoc("/bare", false); status != 404 {
		t.Fatalf("status %d, want 404 for missing index", status)
	}
}

func TestResolveDocGzipSidecar(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, filepath.Join(dir, "app.js"), []byte("var x = 1;"))
	writeDoc(t, filepath.Join(dir, "app.js.gz"), []byte("gzbytes"))
	s := newTestServer(t, dir)

	doc, status := s.resolveDoc("/app.js", true)
	if status != 200 {
		t.Fatalf("status %d, want 200", status)
	}
	if !doc.gzip {
		t.Fatal("sidecar not selected")
	}
	if doc.size != 7 {
		t.Fatalf("size %d, want sidecar size 7", doc.size)
	}
	if doc.contentType != "text/javascript; charset=utf-8" {
		t.Fatalf("content type %q, want the original's", doc.contentType)
	}

	// Without Accept-Encoding the original is served.
	doc, _ = s.resolveDoc("/app.js", false)
	if doc.gzip {
		t.Fatal("sidecar selected without gzip acceptance")
	}
}

func TestResolveDocStaleSidecarIgnored(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "app.css")
	writeDoc(t, orig+".gz", []byte("old"))
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(orig+".gz", old, old); err != nil {
		t.Fatal(err)
	}
	writeDoc(t, orig, []byte("fresh"))
	s := newTestServer(t, dir)

	doc, _ := s.resolveDoc("/app.css", true)
	if doc.gzip {
		t.Fatal("stale sidecar must be ignored")
	}
}

func TestDocEtagStability(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.txt")
	writeDoc(t, p, []byte("stable"))
	s := newTestServer(t, dir)

	d1, _ := s.resolveDoc("/doc.txt", false)
	d2, _ := s.resolveDoc("/doc.txt", false)
	if d1.etag != d2.etag {
		t.Fatalf("etag unstable: %q vs %q", d1.etag, d2.etag)
	}

	// A content change with a different size must change the validator.
	writeDoc(t, p, []byte("changed content"))
	d3, _ := s.resolveDoc("/doc.txt", false)
	if d3.etag == d1.etag {
		t.Fatal("etag did not change with the document")
	}
}

func TestContentTypeFor(t *testing.T) {
	for ext, want := range map[string]string{
		"/a/b.PNG":  "image/png",
		"/a/b.json": "application/json",
		"/a/b.bin":  "application/octet-stream",
		"/a/b":      "application/octet-stream",
	} {
		if got := contentTypeFor(ext); got != want {
			t.Fatalf("contentTypeFor(%q) = %q, want %q", ext, got, want)
		}
	}
}
