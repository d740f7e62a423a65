// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package bootloader

import (
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
)

// Strategy is the way a device family is switched into its bootloader.
type Strategy int

const (
	// StrategyNone means bridgeup can't switch the device.
	StrategyNone Strategy = iota
	// StrategyCommand sends the 'enter bootloader' control command.
	StrategyCommand
	// StrategyBaudReset opens the port at ports.ResetBaudRate.
	StrategyBaudReset
	// StrategyAlready is used for devices that run their bootloader already.
	StrategyAlready
)

func (s Strategy) String() string {
	switch s {
	case StrategyCommand:
		return "command"
	case StrategyBaudReset:
		return "baud-reset"
	case StrategyAlready:
		return "already"
	default:
		return "none"
	}
}

var strategies = map[device.Type]Strategy{
	device.Bridge6: StrategyCommand,
	device.Bridge4: StrategyCommand,
	device.Click:   StrategyBaudReset,
	device.ULoop:   StrategyBaudReset,
	device.RPBoot:  StrategyAlready,
}

// StrategyFor returns the strategy of the device type.
func StrategyFor(t device.Type) Strategy {
	return strategies[t]
}
