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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func gunzipFile(t *testing.T, path string) []byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	b, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestPrecompressBuildsSidecars(t *testing.T) {
	dir := t.TempDir()
	content := bytes.Repeat([]byte("compress me please "), 200)
	writeDoc(t, filepath.Join(dir, "page.html"), content)
	writeDoc(t, filepath.Join(dir, "tiny.css"), []byte("small"))
	writeDoc(t, filepath.Join(dir, "photo.jpg"), bytes.Repeat([]byte{0xff}, 4096))

	s := New(&Options{DocRoot: dir, NoSigs: true, Port: RANDOM_PORT, Precompress: true})
	if err := s.precompress(); err != nil {
		t.Fatal(err)
	}

	got := gunzipFile(t, filepath.Join(dir, "page.html.gz"))
	if !bytes.Equal(got, content) {
		t.Fatal("sidecar does not round-trip")
	}

	// Below the size threshold and excluded extensions get no sidecar.
	if _, err := os.Stat(filepath.Join(dir, "tiny.css.gz")); !os.IsNotExist(err) {
		t.Fatal("sidecar built below the size threshold")
	}
	if _, err := os.Stat(filepath.Join(dir, "photo.jpg.gz")); !os.IsNotExist(err) {
		t.Fatal("sidecar built for a compressed format")
	}

	// No leftover temp files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("leftover temp file %s", e.Name())
		}
	}
}

func TestPrecompressSkipsCurrentSidecar(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "app.js")
	writeDoc(t, doc, bytes.Repeat([]byte("code();"), 400))

	s := New(&Options{DocRoot: dir, NoSigs: true, Port: RANDOM_PORT})
	if err := s.precompress(); err != nil {
		t.Fatal(err)
	}
	fi1, err := os.Stat(doc + ".gz")
	if err != nil {
		t.Fatal(err)
	}

	// A second pass leaves the current sidecar untouched.
	if err := s.precompress(); err != nil {
		t.Fatal(err)
	}
	fi2, _ := os.Stat(doc + ".gz")
	if !fi2.ModTime().Equal(fi1.ModTime()) {
		t.Fatal("current sidecar rebuilt")
	}

	// Touching the document makes the sidecar stale.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(doc+".gz", past, past); err != nil {
		t.Fatal(err)
	}
	if err := s.precompress(); err != nil {
		t.Fatal(err)
	}
	fi3, _ := os.Stat(doc + ".gz")
	if fi3.ModTime().Equal(past) {
		t.Fatal("stale sidecar not rebuilt")
	}
}
