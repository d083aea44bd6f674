// SPDX-License-Identifier: MIT

// Package export renders decoded channels as multi-channel PCM WAV files so
// recordings can be inspected in ordinary audio tools.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	applog "eeg/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Defaults for Options.
const (
	DefaultSampleRate      = 256
	DefaultBitDepth        = 16
	DefaultFramesPerBuffer = 1024
	headroom               = 0.9
)

var ErrNoChannels = errors.New("export: no channels to write")

// Options controls WAV rendering. A zero Gain scales the loudest sample to
// 90% of full scale.
type Options struct {
	SampleRate int
	BitDepth   int
	Gain       float64
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.BitDepth == 0 {
		o.BitDepth = DefaultBitDepth
	}
	return o
}

// fullScale returns the largest positive sample value for bitDepth.
func fullScale(bitDepth int) (int, error) {
	switch bitDepth {
	case 16, 24, 32:
		return 1<<(bitDepth-1) - 1, nil
	default:
		return 0, fmt.Errorf("export: unsupported bit depth %d", bitDepth)
	}
}

// AutoGain returns the gain that maps the largest magnitude in channels to
// 90% of full scale. Silent input gets a gain of 1.
func AutoGain(channels [][]float64, bitDepth int) float64 {
	limit, err := fullScale(bitDepth)
	if err != nil {
		return 1
	}
	var peak float64
	for _, ch := range channels {
		for _, v := range ch {
			if a := math.Abs(v); a > peak && !math.IsInf(a, 0) {
				peak = a
			}
		}
	}
	if peak == 0 {
		return 1
	}
	return headroom * float64(limit) / peak
}

// quantize scales v and clips it to [-limit-1, limit].
func quantize(v, gain float64, limit int) int {
	if math.IsNaN(v) {
		return 0
	}
	s := math.Round(v * gain)
	switch {
	case s > float64(limit):
		return limit
	case s < float64(-limit-1):
		return -limit - 1
	default:
		return int(s)
	}
}

// WriteWAV interleaves channels frame by frame and encodes them to w. The
// frame count is the length of the shortest channel.
func WriteWAV(w io.WriteSeeker, channels [][]float64, opts Options) error {
	if len(channels) == 0 {
		return ErrNoChannels
	}
	opts = opts.withDefaults()
	limit, err := fullScale(opts.BitDepth)
	if err != nil {
		return err
	}
	gain := opts.Gain
	if gain == 0 {
		gain = AutoGain(channels, opts.BitDepth)
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}
	numChans := len(channels)

	enc := wav.NewEncoder(w, opts.SampleRate, opts.BitDepth, numChans, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChans,
			SampleRate:  opts.SampleRate,
		},
		SourceBitDepth: opts.BitDepth,
		Data:           make([]int, DefaultFramesPerBuffer*numChans),
	}

	for start := 0; start < frames; start += DefaultFramesPerBuffer {
		end := min(start+DefaultFramesPerBuffer, frames)
		data := buf.Data[:(end-start)*numChans]
		for f := start; f < end; f++ {
			base := (f - start) * numChans
			for c, ch := range channels {
				data[base+c] = quantize(ch[f], gain, limit)
			}
		}
		buf.Data = data
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("export: write frames %d-%d: %w", start, end, err)
		}
		buf.Data = buf.Data[:cap(buf.Data)]
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: finalize: %w", err)
	}
	applog.Debugw("export: wav written", "channels", numChans, "frames", frames,
		"sampleRate", opts.SampleRate, "bitDepth", opts.BitDepth, "gain", gain)
	return nil
}

// WriteFile creates path and writes channels to it as WAV.
func WriteFile(path string, channels [][]float64, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteWAV(file, channels, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
