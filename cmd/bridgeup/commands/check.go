// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toitlang/bridgeup/cmd/bridgeup/bridge"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ask a Bridge device to describe itself",
		Long: "Ask a Bridge device for its model, firmware version and unique id.\n" +
			"The device is either given by its serial port or like for 'bridgeup bootloader'.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFor(cmd)

			enc, err := parseOutputFlag(cmd)
			if err != nil {
				return err
			}

			portName, err := cmd.Flags().GetString("port")
			if err != nil {
				return err
			}
			cfg := ports.Config{Name: portName, BaudRate: ports.DefaultBaudRate}
			if portName == "" {
				dev, err := GetDevice(cmd)
				if err != nil {
					return err
				}
				resolver, err := newResolver(logger)
				if err != nil {
					return err
				}
				if cfg, err = resolver.Resolve(dev, ports.DefaultBaudRate); err != nil {
					return err
				}
			}

			port, err := ports.SerialOpener{}.Open(cfg)
			if err != nil {
				return err
			}
			defer port.Close()
			if err := port.SetReadTimeout(bridge.DefaultReadTimeout); err != nil {
				return err
			}

			info, err := bridge.New(port, bridge.WithLogger(logger)).Check()
			if err != nil {
				return fmt.Errorf("the device on '%s' did not answer: %w", cfg.Name, err)
			}
			return enc.Encode(deviceInfo(*info))
		},
	}

	cmd.Flags().StringP("port", "p", "", "serial port of the device")
	addDeviceFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

type deviceInfo bridge.DeviceInfo

func (d deviceInfo) Short() string {
	return fmt.Sprintf("%s '%s' (firmware %s, hardware %s, uid %s)", d.DeviceModel, d.DeviceName, d.FirmwareVersion, d.HardwareVersion, d.UID)
}
