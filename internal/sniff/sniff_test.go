// SPDX-License-Identifier: MIT
package sniff

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"
)

// interleavedInt16 builds a little-endian int16 buffer where sample s of
// channel ch holds ch*100 + s.
func interleavedInt16(channels, samples int) []byte {
	buf := make([]byte, channels*samples*2)
	for s := 0; s < samples; s++ {
		for ch := 0; ch < channels; ch++ {
			idx := (s*channels + ch) * 2
			binary.LittleEndian.PutUint16(buf[idx:], uint16(int16(ch*100+s)))
		}
	}
	return buf
}

func TestDTypeString(t *testing.T) {
	tests := []struct {
		dt   DType
		want string
	}{
		{dtypes[0], "int16 (LE)"},
		{dtypes[1], "int16 (BE)"},
		{dtypes[2], "float32 (LE)"},
		{dtypes[3], "float32 (BE)"},
	}
	for _, tt := range tests {
		if got := tt.dt.String(); got != tt.want {
			t.Errorf("DType.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDTypeAt(t *testing.T) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b, uint16(0xFF38)) // -200
	if got := dtypes[1].At(b); got != -200 {
		t.Errorf("int16 BE At() = %v, want -200", got)
	}
	binary.LittleEndian.PutUint32(b, math.Float32bits(3.082))
	if got := dtypes[2].At(b); math.Abs(got-3.082) > 1e-6 {
		t.Errorf("float32 LE At() = %v, want 3.082", got)
	}
}

func TestCandidatesThreshold(t *testing.T) {
	opts := DefaultOptions()
	// 64 channels * 10 samples * 2 bytes: only int16 at offset 0 qualifies.
	got := Candidates(1280, opts)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(got), got)
	}
	for _, c := range got {
		if c.Offset != 0 || c.DType.Kind != Int16 || c.Samples != 10 {
			t.Errorf("unexpected candidate %+v", c)
		}
	}

	if got := Candidates(1279, opts); len(got) != 0 {
		t.Errorf("expected no candidates below threshold, got %d", len(got))
	}
}

func TestCandidatesOffsetsBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.Channels = 1
	for _, c := range Candidates(100000, opts) {
		if c.Offset >= opts.MaxScanOffset || c.Offset%opts.OffsetStep != 0 {
			t.Fatalf("offset %d outside search space", c.Offset)
		}
	}
}

func TestDecodeNoValidDecoding(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Empty", 0},
		{"Tiny", 16},
		{"Just Below Threshold", 64*10*2 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(context.Background(), make([]byte, tt.size), DefaultOptions())
			if !errors.Is(err, ErrNoValidDecoding) {
				t.Fatalf("expected ErrNoValidDecoding, got %v", err)
			}
			if res != nil {
				t.Errorf("expected nil result, got %+v", res.Info)
			}
		})
	}
}

func TestDecodeChannelMajor(t *testing.T) {
	opts := DefaultOptions()
	opts.Channels = 4
	opts.PreviewChannels = 2
	buf := interleavedInt16(4, 300)

	res, err := Decode(context.Background(), buf, opts)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if res.Info.Offset != 0 || res.Info.DTypeName != "int16 (LE)" || res.Info.Samples != 300 {
		t.Fatalf("unexpected winner %+v", res.Info)
	}
	for ch := 0; ch < 4; ch++ {
		for _, s := range []int{0, 1, 150, 299} {
			if got := res.Channels[ch][s]; got != float64(ch*100+s) {
				t.Errorf("channel %d sample %d = %v, want %d", ch, s, got, ch*100+s)
			}
		}
	}
	if res.Info.PlausibleFraction != 1 {
		t.Errorf("PlausibleFraction = %v, want 1", res.Info.PlausibleFraction)
	}
	wantScore := math.Log1p(4 * 300)
	if math.Abs(res.Info.Score-wantScore) > 1e-12 {
		t.Errorf("Score = %v, want %v", res.Info.Score, wantScore)
	}
}

func TestDecodeNeverBelowMinSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	opts := DefaultOptions()
	for i := 0; i < 40; i++ {
		size := rng.Intn(8000)
		opts.Channels = 1 + rng.Intn(64)
		buf := make([]byte, size)
		rng.Read(buf)

		res, err := Decode(context.Background(), buf, opts)
		if err != nil {
			if !errors.Is(err, ErrNoValidDecoding) {
				t.Fatalf("unexpected error: %v", err)
			}
			continue
		}
		info := res.Info
		if info.Samples < opts.MinSamples {
			t.Fatalf("size %d channels %d: samples %d below threshold", size, opts.Channels, info.Samples)
		}
		if info.Channels*info.Samples*info.DType.Width > size-info.Offset {
			t.Fatalf("decoding %+v overruns buffer of %d bytes", info, size)
		}
		if len(res.Channels) != opts.Channels || len(res.Channels[0]) != info.Samples {
			t.Fatalf("channel matrix shape mismatch")
		}
	}
}

func TestScoreImplausibleFloats(t *testing.T) {
	const n = 64
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(200000))
	}

	f32 := Candidate{Offset: 0, DType: dtypes[2], Channels: 1, Samples: n}
	score, plausible := Score(buf, f32, DefaultPlausibleLimit)
	if score != 0 || plausible != 0 {
		t.Errorf("float32 LE score = (%v, %v), want zero", score, plausible)
	}

	i16 := Candidate{Offset: 0, DType: dtypes[0], Channels: 1, Samples: 2 * n}
	if _, plausible := Score(buf, i16, DefaultPlausibleLimit); plausible != 1 {
		t.Errorf("int16 plausible fraction = %v, want 1", plausible)
	}
}

func TestDecodePreview(t *testing.T) {
	opts := DefaultOptions()
	buf := interleavedInt16(64, 500)

	res, err := Decode(context.Background(), buf, opts)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	p := res.Preview
	// floor(255 / (1000/256)) = 65
	if len(p.TimeMillis) != 65 {
		t.Fatalf("preview length = %d, want 65", len(p.TimeMillis))
	}
	if len(p.Traces) != 5 || p.Traces[0].Name != "Ch 1" || p.Traces[4].Name != "Ch 5" {
		t.Fatalf("unexpected traces %+v", p.Traces)
	}
	if p.TimeMillis[1] != 1000.0/256 {
		t.Errorf("time step = %v, want %v", p.TimeMillis[1], 1000.0/256)
	}
	if p.Traces[2].Values[10] != 210 {
		t.Errorf("preview value = %v, want 210", p.Traces[2].Values[10])
	}

	// The preview is a copy; mutating it leaves the decoded matrix untouched.
	p.Traces[0].Values[0] = -1
	if res.Channels[0][0] != 0 {
		t.Error("preview aliases decoded channels")
	}
}

func TestPreviewShortRecording(t *testing.T) {
	ch := [][]float64{{1, 2, 3}}
	p := NewPreview(ch, 5, 256, 255)
	if len(p.TimeMillis) != 3 || len(p.Traces) != 1 {
		t.Errorf("short preview = %+v", p)
	}
	if got := NewPreview(nil, 5, 256, 255); len(got.Traces) != 0 {
		t.Error("expected empty preview for no channels")
	}
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Decode(ctx, interleavedInt16(64, 100), DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	channels := [][]float64{{5, 5, 5, 5}, {math.NaN(), 3e5}}
	s := Summarize(channels, DefaultPlausibleLimit)
	if s.Plausible != 4.0/6.0 {
		t.Errorf("Plausible = %v, want %v", s.Plausible, 4.0/6.0)
	}
	if s.Median != 5 || s.Min != 5 {
		t.Errorf("Median/Min = %v/%v, want 5/5", s.Median, s.Min)
	}
	if s.Max < 5 || s.Max > 3e5 {
		t.Errorf("p99 out of range: %+v", s)
	}
	if s.Mean != 60004 {
		t.Errorf("Mean = %v, want 60004 (NaN excluded)", s.Mean)
	}
	if got := Summarize(nil, DefaultPlausibleLimit); got != (Stats{}) {
		t.Errorf("empty summary = %+v", got)
	}
}

func BenchmarkDecode(b *testing.B) {
	buf := interleavedInt16(64, 256)
	opts := DefaultOptions()
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Decode(context.Background(), buf, opts)
	}
}
