// SPDX-License-Identifier: MIT
package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

var payload = []byte("0 FP1 0 3.082\n0 FP2 0 -1.5\n")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func compress(t *testing.T, codec Codec, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch codec {
	case CodecGzip:
		w := gzip.NewWriter(&buf)
		_, err = w.Write(data)
		err = errors.Join(err, w.Close())
	case CodecZstd:
		w, zerr := zstd.NewWriter(&buf)
		if zerr != nil {
			t.Fatal(zerr)
		}
		_, err = w.Write(data)
		err = errors.Join(err, w.Close())
	case CodecBrotli:
		w := brotli.NewWriter(&buf)
		_, err = w.Write(data)
		err = errors.Join(err, w.Close())
	case CodecSnappy:
		w := snappy.NewBufferedWriter(&buf)
		_, err = w.Write(data)
		err = errors.Join(err, w.Close())
	case CodecLZ4:
		w := lz4.NewWriter(&buf)
		_, err = w.Write(data)
		err = errors.Join(err, w.Close())
	default:
		buf.Write(data)
	}
	if err != nil {
		t.Fatalf("compress %s: %v", codec, err)
	}
	return buf.Bytes()
}

func TestReadDecompresses(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
	}{
		{"session.rd.000", CodecNone},
		{"session.rd.000.gz", CodecGzip},
		{"session.rd.000.zst", CodecZstd},
		{"session.rd.000.br", CodecBrotli},
		{"session.rd.000.sz", CodecSnappy},
		{"session.rd.000.lz4", CodecLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.name, compress(t, tt.codec, payload))
			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("got %q, want %q", got, payload)
			}
		})
	}
}

func TestReadCorruptGzip(t *testing.T) {
	path := writeFile(t, "bad.csv.gz", []byte("not gzip"))
	if _, err := Read(path); err == nil {
		t.Error("expected error for corrupt gzip")
	}
}

func TestCodecFor(t *testing.T) {
	codec, name := CodecFor("S1.CSV.GZ")
	if codec != CodecGzip || name != "S1.CSV" {
		t.Errorf("CodecFor = %v, %q", codec, name)
	}
	if codec, name := CodecFor("plain.dat"); codec != CodecNone || name != "plain.dat" {
		t.Errorf("CodecFor(plain) = %v, %q", codec, name)
	}
}

func buildZip(t *testing.T, files map[string][]byte, dirs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, d := range dirs {
		if _, err := zw.Create(d + "/"); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"a.rd.000", "notes.txt", "b.CSV", "c.edf", "d.dat"} {
		data, ok := files[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestEntriesZipFiltersMembers(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"a.rd.000":  payload,
		"notes.txt": []byte("ignore"),
		"b.CSV":     []byte("seconds,chan,voltage\n1,O1,2\n"),
	}, "folder.csv")
	path := writeFile(t, "bundle.zip", data)

	entries, err := Entries(path)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a.rd.000" || entries[1].Name != "b.CSV" {
		t.Fatalf("entries = %+v", entries)
	}
	if !bytes.Equal(entries[0].Data, payload) {
		t.Errorf("entry data = %q", entries[0].Data)
	}
}

func TestEntriesZipErrors(t *testing.T) {
	if _, err := ZipEntries(buildZip(t, nil)); !errors.Is(err, ErrEmptyArchive) {
		t.Errorf("empty archive: %v", err)
	}
	only := buildZip(t, map[string][]byte{"notes.txt": []byte("x")})
	if _, err := ZipEntries(only); !errors.Is(err, ErrNoEEGEntries) {
		t.Errorf("no EEG members: %v", err)
	}
	if _, err := ZipEntries([]byte("not a zip")); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestEntriesPlainFile(t *testing.T) {
	path := writeFile(t, "s.csv.gz", compress(t, CodecGzip, payload))
	entries, err := Entries(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "s.csv" {
		t.Errorf("entries = %+v", entries)
	}
}
