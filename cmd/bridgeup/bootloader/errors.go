// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package bootloader

import (
	"fmt"

	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
)

// ProtocolError is returned when the device did not accept the 'enter
// bootloader' command.
type ProtocolError struct {
	Device device.Connected
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unable to enter bootloader of %s due to error: %v", e.Device, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the port could not be opened or written.
type TransportError struct {
	Device   device.Connected
	Port     string
	BaudRate int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unable to use serial port '%s' at %d baud for %s: %v", e.Port, e.BaudRate, e.Device, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnsupportedError is returned for device types without a way to enter the
// bootloader.
type UnsupportedError struct {
	Device device.Connected
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("don't know how to enter the bootloader of %s", e.Device)
}
