// SPDX-License-Identifier: MIT
package pipeline

import (
	"errors"

	"eeg/internal/config"
	"eeg/internal/transport"
	"eeg/internal/transport/udp"
)

// OpenTransport builds the result transports enabled in cfg. The logging
// transport is always present.
func OpenTransport(cfg config.TransportConfig) (transport.Transport, error) {
	multi := transport.Multi{transport.NewLoggingTransport()}

	if cfg.WebSocketAddr != "" {
		ws, err := transport.NewWebSocketTransport(cfg.WebSocketAddr)
		if err != nil {
			return nil, errors.Join(err, multi.Close())
		}
		multi = append(multi, ws)
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewSender(cfg.UDPTargetAddress)
		if err != nil {
			return nil, errors.Join(err, multi.Close())
		}
		pub, err := udp.NewPublisher(cfg.UDPSendInterval, sender)
		if err != nil {
			return nil, errors.Join(err, sender.Close(), multi.Close())
		}
		pub.Start()
		multi = append(multi, &udpLink{Publisher: pub, sender: sender})
	}
	return multi, nil
}

// udpLink closes the socket once the publisher has drained.
type udpLink struct {
	*udp.Publisher
	sender *udp.Sender
}

func (l *udpLink) Close() error {
	return errors.Join(l.Publisher.Close(), l.sender.Close())
}
