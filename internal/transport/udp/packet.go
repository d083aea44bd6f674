// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"eeg/internal/analysis"
)

/*
Window packet (BigEndian):

	+--------------------+--------+-------+----------------------------+
	| Field              | Type   | Bytes | Description                |
	|--------------------|--------|-------|----------------------------|
	| Sequence Number    | uint32 | 4     | Monotonically increasing   |
	| Timestamp          | int64  | 8     | Nanoseconds since epoch    |
	| Window Index       | uint32 | 4     | WindowResult.WindowIndex   |
	| Variance           | f32    | 4     | Population variance        |
	| Band Powers        | 5×f32  | 20    | delta, theta, alpha, beta, |
	|                    |        |       | gamma                      |
	+--------------------+--------+-------+----------------------------+
*/

// PacketSize is the encoded length of one window packet.
const PacketSize = 4 + 8 + 4 + 4 + 5*4

// Packet is the decoded form of a window packet.
type Packet struct {
	Sequence    uint32
	Timestamp   int64
	WindowIndex uint32
	Variance    float32
	Bands       [5]float32
}

// NewPacket narrows r to the wire representation.
func NewPacket(seq uint32, ts int64, r analysis.WindowResult) Packet {
	p := Packet{
		Sequence:    seq,
		Timestamp:   ts,
		WindowIndex: uint32(r.WindowIndex),
		Variance:    float32(r.Variance),
	}
	for i, v := range r.Bandpower.Values() {
		p.Bands[i] = float32(v)
	}
	return p
}

// Encode appends the packet to buf, which is reset first.
func (p Packet) Encode(buf *bytes.Buffer) error {
	buf.Reset()
	return binary.Write(buf, binary.BigEndian, p)
}

// DecodePacket parses one window packet.
func DecodePacket(b []byte) (Packet, error) {
	var p Packet
	if len(b) != PacketSize {
		return p, fmt.Errorf("udp: packet is %d bytes, want %d", len(b), PacketSize)
	}
	err := binary.Read(bytes.NewReader(b), binary.BigEndian, &p)
	return p, err
}
