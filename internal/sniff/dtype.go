// SPDX-License-Identifier: MIT
package sniff

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the numeric family of a sample encoding.
type Kind int

const (
	Int16 Kind = iota
	Float32
)

func (k Kind) String() string {
	switch k {
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// DType describes how a single sample is laid out in the raw buffer.
type DType struct {
	Kind         Kind
	Width        int // Bytes per sample.
	LittleEndian bool
}

// String renders the dtype as e.g. "int16 (LE)".
func (d DType) String() string {
	endian := "BE"
	if d.LittleEndian {
		endian = "LE"
	}
	return fmt.Sprintf("%s (%s)", d.Kind, endian)
}

func (d DType) order() binary.ByteOrder {
	if d.LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// At decodes the sample starting at b[0]. b must hold at least Width bytes.
func (d DType) At(b []byte) float64 {
	order := d.order()
	switch d.Kind {
	case Int16:
		return float64(int16(order.Uint16(b)))
	case Float32:
		return float64(math.Float32frombits(order.Uint32(b)))
	default:
		return math.NaN()
	}
}

// Search order matters: on equal scores the earlier dtype wins.
var dtypes = [...]DType{
	{Kind: Int16, Width: 2, LittleEndian: true},
	{Kind: Int16, Width: 2, LittleEndian: false},
	{Kind: Float32, Width: 4, LittleEndian: true},
	{Kind: Float32, Width: 4, LittleEndian: false},
}

