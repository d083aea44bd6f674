// SPDX-License-Identifier: MIT

// Package transport delivers analysis results to observers outside the
// process.
package transport

import "errors"

// Transport sends results or events. Implementations are safe for
// concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Multi fans every Send out to each transport in order.
type Multi []Transport

// Send delivers data to every transport and joins their errors.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
