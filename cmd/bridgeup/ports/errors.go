// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package ports

import (
	"errors"
	"fmt"

	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
)

var (
	ErrNoPorts         = errors.New("no serial ports available")
	ErrNoMatch         = errors.New("unable to locate device")
	ErrAmbiguous       = errors.New("more than one serial port matches the device")
	ErrMissingIdentity = errors.New("unable to retrieve device descriptions")
	ErrInvalidBaudRate = errors.New("baud rate must be positive")
)

// EnumerationError is returned when the host could not list its serial
// ports.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("failed to list serial ports: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// ResolutionError is returned when the ports were listed but no single port
// could be bound to the device. Err is one of the Err* sentinels of this
// package.
type ResolutionError struct {
	Device device.Connected
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to find the serial port of %s: %v", e.Device, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
