// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package ports

import (
	"runtime"

	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"go.uber.org/zap"
)

// Resolver binds a device to the one serial port it is attached to.
// Resolving never opens a port.
type Resolver struct {
	enum   Enumerator
	match  Matcher
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithEnumerator(enum Enumerator) Option {
	return func(r *Resolver) {
		r.enum = enum
	}
}

func WithMatcher(match Matcher) Option {
	return func(r *Resolver) {
		r.match = match
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver returns a resolver that lists the system ports and matches
// with the strategy of the host platform unless configured otherwise.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		enum:   SystemEnumerator{},
		match:  MatcherFor(runtime.GOOS),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the port configuration for the device at the given baud
// rate.
func (r *Resolver) Resolve(dev device.Connected, baudRate int) (Config, error) {
	if baudRate <= 0 {
		return Config{}, &ResolutionError{Device: dev, Err: ErrInvalidBaudRate}
	}

	candidates, err := r.enum.Ports()
	if err != nil {
		return Config{}, &EnumerationError{Err: err}
	}
	if len(candidates) == 0 {
		return Config{}, &ResolutionError{Device: dev, Err: ErrNoPorts}
	}

	for _, c := range candidates {
		r.logger.Debug("reviewing port",
			zap.String("port", c.Name),
			zap.Bool("usb", c.IsUSB),
			zap.String("product", c.Product),
			zap.String("serial", c.SerialNumber))
	}

	found, err := r.match(dev, candidates)
	if err != nil {
		return Config{}, &ResolutionError{Device: dev, Err: err}
	}

	r.logger.Debug("found device",
		zap.Stringer("device", dev),
		zap.String("port", found.Name),
		zap.Int("baud", baudRate))
	return Config{Name: found.Name, BaudRate: baudRate}, nil
}
