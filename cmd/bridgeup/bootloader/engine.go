// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package bootloader switches attached devices from their normal mode into
// their bootloader.
//
// Every call to Engine.Enter is a single synchronous attempt: the device is
// resolved to its port, the port is opened for the duration of the switch
// and closed again. Nothing is retried and nothing is kept between attempts.
package bootloader

import (
	"errors"

	"github.com/toitlang/bridgeup/cmd/bridgeup/bridge"
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
	"go.uber.org/zap"
)

// State is the progress of a single attempt.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateTransitioning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateTransitioning:
		return "transitioning"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Observer is notified about every state an attempt goes through.
type Observer func(dev device.Connected, state State)

// Resolver binds a device to its port.
type Resolver interface {
	Resolve(dev device.Connected, baudRate int) (ports.Config, error)
}

// Commander sends control commands over an opened port.
type Commander interface {
	Control(arg bridge.ControlArg) error
}

// ClientFactory creates the protocol client for an opened port.
type ClientFactory func(port ports.Port, logger *zap.Logger) Commander

func newBridgeClient(port ports.Port, logger *zap.Logger) Commander {
	return bridge.New(port, bridge.WithLogger(logger))
}

type Engine struct {
	resolver  Resolver
	opener    ports.Opener
	newClient ClientFactory
	observer  Observer
	logger    *zap.Logger
}

type Option func(*Engine)

func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

func WithOpener(o ports.Opener) Option {
	return func(e *Engine) {
		e.opener = o
	}
}

func WithClientFactory(f ClientFactory) Option {
	return func(e *Engine) {
		e.newClient = f
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New returns an engine working on the serial ports of the host.
func New(opts ...Option) *Engine {
	e := &Engine{
		opener:    ports.SerialOpener{},
		newClient: newBridgeClient,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = ports.NewResolver(ports.WithLogger(e.logger))
	}
	return e
}

// Enter switches the device into its bootloader.
func (e *Engine) Enter(dev device.Connected) (err error) {
	strategy := StrategyFor(dev.Type)
	logger := e.logger.With(zap.Stringer("device", dev), zap.Stringer("strategy", strategy))
	defer func() {
		if err != nil {
			logger.Debug("entering bootloader failed", zap.Error(err))
			e.notify(dev, StateFailed)
		} else {
			e.notify(dev, StateSucceeded)
		}
	}()

	switch strategy {
	case StrategyCommand:
		return e.enterWithCommand(dev, logger)
	case StrategyBaudReset:
		return e.enterWithBaudReset(dev, logger)
	case StrategyAlready:
		logger.Debug("device is in its bootloader already")
		return nil
	default:
		return &UnsupportedError{Device: dev}
	}
}

func (e *Engine) enterWithCommand(dev device.Connected, logger *zap.Logger) error {
	e.notify(dev, StateResolving)
	cfg, err := e.resolver.Resolve(dev, ports.DefaultBaudRate)
	if err != nil {
		return err
	}

	e.notify(dev, StateTransitioning)
	port, err := e.opener.Open(cfg)
	if err != nil {
		return &TransportError{Device: dev, Port: cfg.Name, BaudRate: cfg.BaudRate, Err: err}
	}
	// The device reboots and closing may fail; the command was delivered.
	defer port.Close()

	if err := port.SetReadTimeout(bridge.DefaultReadTimeout); err != nil {
		return &TransportError{Device: dev, Port: cfg.Name, BaudRate: cfg.BaudRate, Err: err}
	}

	logger.Debug("sending enter bootloader command", zap.String("port", cfg.Name))
	if err := e.newClient(port, logger).Control(bridge.EnterBootloader); err != nil {
		var protoErr *bridge.ProtocolError
		if errors.As(err, &protoErr) {
			return &ProtocolError{Device: dev, Err: err}
		}
		return &TransportError{Device: dev, Port: cfg.Name, BaudRate: cfg.BaudRate, Err: err}
	}
	return nil
}

// enterWithBaudReset opens the port at the reset baud rate. The RP2040
// reboots into its bootloader as soon as the port is opened; no data is
// sent.
func (e *Engine) enterWithBaudReset(dev device.Connected, logger *zap.Logger) error {
	e.notify(dev, StateResolving)
	cfg, err := e.resolver.Resolve(dev, ports.ResetBaudRate)
	if err != nil {
		return err
	}

	e.notify(dev, StateTransitioning)
	logger.Debug("opening port to trigger reset", zap.String("port", cfg.Name), zap.Int("baud", cfg.BaudRate))
	port, err := e.opener.Open(cfg)
	if err != nil {
		if IsDisconnectArtifact(err) {
			logger.Debug("device disconnected while opening", zap.Error(err))
			return nil
		}
		return &TransportError{Device: dev, Port: cfg.Name, BaudRate: cfg.BaudRate, Err: err}
	}
	port.Close()
	return nil
}

// IsDisconnectArtifact reports whether err is the generic I/O error Windows
// raises when the device resets while its port is being opened at
// ports.ResetBaudRate. Only ports.KindOther qualifies, which the opener
// reports for plain Windows OS errors only. Only the baud reset may treat it
// as success.
func IsDisconnectArtifact(err error) bool {
	var ioErr *ports.IOError
	return errors.As(err, &ioErr) && ioErr.Kind == ports.KindOther
}

func (e *Engine) notify(dev device.Connected, state State) {
	if e.observer != nil {
		e.observer(dev, state)
	}
}
