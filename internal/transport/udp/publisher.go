// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"eeg/internal/analysis"
	applog "eeg/internal/log"
	"eeg/internal/transport"
)

// PacketSender transmits one encoded packet.
type PacketSender interface {
	Send(data []byte) error
}

// DefaultQueueSize bounds the results waiting to be sent.
const DefaultQueueSize = 1024

// Publisher streams window results as UDP packets from its own goroutine,
// optionally paced at one packet per interval so a recording replays at
// its acquisition rate.
type Publisher struct {
	sender   PacketSender
	interval time.Duration

	queue    chan analysis.WindowResult
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
	closed   bool

	sequenceNum  uint32
	packetBuffer *bytes.Buffer
	now          func() time.Time
}

// NewPublisher creates a publisher. An interval of zero sends as fast as
// results arrive.
func NewPublisher(interval time.Duration, sender PacketSender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("Publisher: UDP sender cannot be nil")
	}
	if interval < 0 {
		applog.Warnf("Publisher: negative interval %s, sending unpaced", interval)
		interval = 0
	}
	return &Publisher{
		sender:       sender,
		interval:     interval,
		queue:        make(chan analysis.WindowResult, DefaultQueueSize),
		doneChan:     make(chan struct{}),
		packetBuffer: new(bytes.Buffer),
		now:          time.Now,
	}, nil
}

// Start launches the publishing goroutine. Subsequent calls are no-ops.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		applog.Warnf("Publisher: Start called but already running.")
		return
	}
	p.started = true

	p.wg.Add(1)
	go p.run()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	applog.Debugf("Publisher: goroutine started (interval: %s)", p.interval)

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.doneChan:
			return
		case r, ok := <-p.queue:
			if !ok {
				return
			}
			if tick != nil {
				select {
				case <-tick:
				case <-p.doneChan:
					return
				}
			}
			p.buildAndSendPacket(r)
		}
	}
}

// Send queues a result. It accepts analysis.WindowResult, a pointer to
// one, or a slice of them.
func (p *Publisher) Send(data any) error {
	switch v := data.(type) {
	case analysis.WindowResult:
		return p.enqueue(v)
	case *analysis.WindowResult:
		return p.enqueue(*v)
	case []analysis.WindowResult:
		for _, r := range v {
			if err := p.enqueue(r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("Publisher: unsupported payload %T", data)
	}
}

func (p *Publisher) enqueue(r analysis.WindowResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrClosed
	}
	select {
	case p.queue <- r:
		return nil
	default:
		return errors.New("Publisher: queue full")
	}
}

func (p *Publisher) buildAndSendPacket(r analysis.WindowResult) {
	p.sequenceNum++
	pkt := NewPacket(p.sequenceNum, p.now().UnixNano(), r)
	if err := pkt.Encode(p.packetBuffer); err != nil {
		applog.Errorf("Publisher: error packing window %d: %v", r.WindowIndex, err)
		return
	}
	if err := p.sender.Send(p.packetBuffer.Bytes()); err == nil {
		applog.Debugf("Publisher: sent packet %d (window %d)", p.sequenceNum, r.WindowIndex)
	}
}

// Stop abandons queued results and waits for the goroutine to exit.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.stopOnce.Do(func() { close(p.doneChan) })
	p.wg.Wait()
	return nil
}

// Close sends every queued result, then stops. A publisher that was never
// started drains its queue here.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return p.Stop()
	}
	p.closed = true
	close(p.queue)
	if !p.started {
		p.started = true
		p.wg.Add(1)
		go p.run()
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.stopOnce.Do(func() { close(p.doneChan) })
	return nil
}

var _ transport.Transport = (*Publisher)(nil)
