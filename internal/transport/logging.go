// SPDX-License-Identifier: MIT
package transport

import (
	"sync/atomic"

	applog "eeg/internal/log"
)

// LoggingTransport writes every payload to the debug log.
type LoggingTransport struct {
	sent atomic.Int64
}

func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs data at debug level. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	n := lt.sent.Add(1)
	applog.Debugw("transport: payload", "seq", n, "data", data)
	return nil
}

// Sent returns the number of payloads logged.
func (lt *LoggingTransport) Sent() int64 {
	return lt.sent.Load()
}

func (lt *LoggingTransport) Close() error {
	applog.Debugw("transport: logging closed", "sent", lt.sent.Load())
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
