// SPDX-License-Identifier: MIT

// Package source reads recording files from disk, undoing transport
// compression and expanding zip archives into their EEG entries.
package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	applog "eeg/internal/log"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

var (
	ErrEmptyArchive = errors.New("source: archive is empty")
	ErrNoEEGEntries = errors.New("source: no EEG files found in archive")
)

// EEGSuffixes are the archive entry names treated as recordings.
var EEGSuffixes = []string{".rd.000", ".edf", ".csv", ".dat"}

// Entry is one recording: a plain file or an archive member.
type Entry struct {
	Name string
	Data []byte
}

// Codec identifies a whole-file compression wrapper.
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecZstd
	CodecBrotli
	CodecSnappy
	CodecLZ4
)

var codecSuffixes = []struct {
	suffix string
	codec  Codec
}{
	{".gz", CodecGzip},
	{".zst", CodecZstd},
	{".br", CodecBrotli},
	{".sz", CodecSnappy},
	{".lz4", CodecLZ4},
}

func (c Codec) String() string {
	for _, cs := range codecSuffixes {
		if cs.codec == c {
			return strings.TrimPrefix(cs.suffix, ".")
		}
	}
	return "none"
}

// CodecFor returns the codec implied by name's extension and the name with
// that extension removed.
func CodecFor(name string) (Codec, string) {
	lower := strings.ToLower(name)
	for _, cs := range codecSuffixes {
		if strings.HasSuffix(lower, cs.suffix) {
			return cs.codec, name[:len(name)-len(cs.suffix)]
		}
	}
	return CodecNone, name
}

// Decompress undoes codec on data.
func Decompress(codec Codec, data []byte) ([]byte, error) {
	var r io.Reader
	switch codec {
	case CodecNone:
		return data, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case CodecZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	case CodecBrotli:
		r = brotli.NewReader(bytes.NewReader(data))
	case CodecSnappy:
		r = snappy.NewReader(bytes.NewReader(data))
	case CodecLZ4:
		r = lz4.NewReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("source: unknown codec %d", codec)
	}

	var b bytes.Buffer
	if _, err := io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("source: %s: %w", codec, err)
	}
	return b.Bytes(), nil
}

// Read returns the contents of path, decompressed according to its
// extension.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	codec, _ := CodecFor(path)
	if codec == CodecNone {
		return data, nil
	}
	out, err := Decompress(codec, data)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	applog.Debugw("source: decompressed", "path", path, "codec", codec.String(), "in", len(data), "out", len(out))
	return out, nil
}

// IsArchive reports whether name is a zip archive.
func IsArchive(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// IsEEGName reports whether name carries one of EEGSuffixes.
func IsEEGName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range EEGSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Entries returns the recordings in path. A zip archive yields its EEG
// members in archive order; anything else yields a single entry named
// after the file with any compression suffix removed.
func Entries(path string) ([]Entry, error) {
	if IsArchive(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ZipEntries(data)
	}
	data, err := Read(path)
	if err != nil {
		return nil, err
	}
	_, name := CodecFor(filepath.Base(path))
	return []Entry{{Name: name, Data: data}}, nil
}

// ZipEntries extracts the EEG members of a zip archive held in memory.
// Directories and other files are skipped.
func ZipEntries(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("source: open zip: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, ErrEmptyArchive
	}

	var out []Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !IsEEGName(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("source: open %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("source: read %s: %w", f.Name, err)
		}
		out = append(out, Entry{Name: f.Name, Data: b})
	}
	if len(out) == 0 {
		return nil, ErrNoEEGEntries
	}
	applog.Debugw("source: zip expanded", "entries", len(out), "members", len(zr.File))
	return out, nil
}
