// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"eeg/internal/analysis"
	"eeg/internal/transport"
)

func sampleResult(i int) analysis.WindowResult {
	return analysis.WindowResult{
		WindowIndex: i,
		Variance:    12.5,
		Bandpower:   analysis.BandPowers{Delta: 1, Theta: 2, Alpha: 3, Beta: 4, Gamma: 5},
	}
}

func TestPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pkt := NewPacket(7, 1_700_000_000_000, sampleResult(3))
	if err := pkt.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != PacketSize {
		t.Fatalf("encoded %d bytes, want %d", buf.Len(), PacketSize)
	}
	// Sequence number leads, big-endian.
	if !bytes.Equal(buf.Bytes()[:4], []byte{0, 0, 0, 7}) {
		t.Errorf("header = % x", buf.Bytes()[:4])
	}
	got, err := DecodePacket(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got != pkt {
		t.Errorf("decoded %+v, want %+v", got, pkt)
	}
	if _, err := DecodePacket(buf.Bytes()[:10]); err == nil {
		t.Error("expected error for short packet")
	}
}

type captureSender struct {
	mu      sync.Mutex
	packets [][]byte
}

func (c *captureSender) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packets = append(c.packets, append([]byte(nil), b...))
	return nil
}

func TestPublisherCloseDrainsQueue(t *testing.T) {
	sink := &captureSender{}
	p, err := NewPublisher(0, sink)
	if err != nil {
		t.Fatal(err)
	}
	p.Start()
	if err := p.Send([]analysis.WindowResult{sampleResult(0), sampleResult(1)}); err != nil {
		t.Fatal(err)
	}
	r := sampleResult(2)
	if err := p.Send(&r); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	if len(sink.packets) != 3 {
		t.Fatalf("sent %d packets, want 3", len(sink.packets))
	}
	for i, b := range sink.packets {
		pkt, err := DecodePacket(b)
		if err != nil {
			t.Fatal(err)
		}
		if pkt.Sequence != uint32(i+1) || pkt.WindowIndex != uint32(i) {
			t.Errorf("packet %d = %+v", i, pkt)
		}
	}

	if err := p.Send(sampleResult(9)); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("Send after Close = %v, want ErrClosed", err)
	}
}

func TestPublisherRejectsUnknownPayload(t *testing.T) {
	p, _ := NewPublisher(0, &captureSender{})
	defer p.Stop()
	if err := p.Send("hello"); err == nil {
		t.Error("expected error for string payload")
	}
	if _, err := NewPublisher(0, nil); err == nil {
		t.Error("expected error for nil sender")
	}
}

func TestPublisherOverUDP(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	sender, err := NewSender(conn.LocalAddr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer sender.Close()

	p, err := NewPublisher(time.Millisecond, sender)
	if err != nil {
		t.Fatal(err)
	}
	p.Start()
	_ = p.Send(sampleResult(4))
	_ = p.Close()

	buf := make([]byte, 128)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	pkt, err := DecodePacket(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if pkt.WindowIndex != 4 || pkt.Bands[2] != 3 {
		t.Errorf("packet = %+v", pkt)
	}

	_ = sender.Close()
	if err := sender.Send([]byte{1}); !errors.Is(err, ErrSenderClosed) {
		t.Errorf("Send after Close = %v", err)
	}
}
