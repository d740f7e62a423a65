// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func DevicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage the devices bridgeup knows about",
		Long: `Manage the devices stored in the bridgeup configuration.

A stored device remembers its type together with the USB product string
and the serial number its port reports, so it can be selected with
'--device <name>' instead of repeating these values.`,
		Args: cobra.NoArgs,
	}

	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "Lists the stored devices",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			devices, err := loadDevices(cfg)
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored devices.")
				return nil
			}
			enc, err := parseOutputFlag(cmd)
			if err != nil {
				return err
			}
			return enc.Encode(deviceList(devices))
		},
	}
	addOutputFlag(listCmd)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Adds or updates a device",
		Long: `Adds a device to the stored devices.

If a device with the same name already exists, it is replaced. With
'--port' the product string and serial number are taken from the given
serial port.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString("name")
			if err != nil {
				return err
			}
			dev, err := deviceFromIdentityFlags(cmd)
			if err != nil {
				return err
			}
			dev.Name = strings.TrimSpace(name)

			port, err := cmd.Flags().GetString("port")
			if err != nil {
				return err
			}
			if port != "" {
				if dev, err = fillFromPort(dev, ports.SystemEnumerator{}, port); err != nil {
					return err
				}
			}

			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			devices, err := loadDevices(cfg)
			if err != nil {
				return err
			}
			saveDevices(cfg, upsertDevice(devices, dev))
			if err := directory.WriteConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", dev)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "name of the device")
	addIdentityFlags(addCmd)
	addCmd.Flags().StringP("port", "p", "", "take product string and serial number from this serial port")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("type")

	removeCmd := &cobra.Command{
		Use:          "remove",
		Short:        "Removes a stored device",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString("name")
			if err != nil {
				return err
			}
			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			devices, err := loadDevices(cfg)
			if err != nil {
				return err
			}
			devices, removed := removeDevice(devices, name)
			if !removed {
				return fmt.Errorf("no stored device named '%s'", name)
			}
			saveDevices(cfg, devices)
			return directory.WriteConfig(cfg)
		},
	}
	removeCmd.Flags().String("name", "", "name of the device")
	removeCmd.MarkFlagRequired("name")

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}

type deviceList []device.Connected

func (l deviceList) Elements() []Short {
	res := make([]Short, len(l))
	for i, d := range l {
		res[i] = deviceEntry(d)
	}
	return res
}

type deviceEntry device.Connected

func (d deviceEntry) Short() string {
	return device.Connected(d).String()
}

func loadDevices(cfg *viper.Viper) ([]device.Connected, error) {
	if cfg == nil || !cfg.IsSet(directory.DevicesCfgKey) {
		return nil, nil
	}
	var res []device.Connected
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := cfg.UnmarshalKey(directory.DevicesCfgKey, &res, hook); err != nil {
		return nil, fmt.Errorf("failed to read stored devices: %w", err)
	}
	return res, nil
}

func saveDevices(cfg *viper.Viper, devices []device.Connected) {
	serialized := make([]map[string]string, 0, len(devices))
	for _, d := range devices {
		entry := map[string]string{
			"name": d.Name,
			"type": d.Type.String(),
		}
		if d.Description != "" {
			entry["description"] = d.Description
		}
		if d.SerialNumber != "" {
			entry["serial"] = d.SerialNumber
		}
		serialized = append(serialized, entry)
	}
	cfg.Set(directory.DevicesCfgKey, serialized)
}

func upsertDevice(devices []device.Connected, dev device.Connected) []device.Connected {
	for i, existing := range devices {
		if strings.EqualFold(existing.Name, dev.Name) {
			devices[i] = dev
			return devices
		}
	}
	return append(devices, dev)
}

func removeDevice(devices []device.Connected, name string) ([]device.Connected, bool) {
	for i, existing := range devices {
		if strings.EqualFold(existing.Name, strings.TrimSpace(name)) {
			return append(devices[:i:i], devices[i+1:]...), true
		}
	}
	return devices, false
}

func findDevice(devices []device.Connected, name string) (device.Connected, bool) {
	for _, d := range devices {
		if strings.EqualFold(d.Name, strings.TrimSpace(name)) {
			return d, true
		}
	}
	return device.Connected{}, false
}

// fillFromPort copies the USB identity of the named port into dev.
func fillFromPort(dev device.Connected, enum ports.Enumerator, name string) (device.Connected, error) {
	list, err := ports.List(enum, true)
	if err != nil {
		return dev, err
	}
	for _, c := range list {
		if c.Name != name {
			continue
		}
		if !c.IsUSB {
			return dev, fmt.Errorf("the port '%s' is not a USB port", name)
		}
		if dev.Description == "" {
			dev.Description = c.Product
		}
		if dev.SerialNumber == "" {
			dev.SerialNumber = c.SerialNumber
		}
		return dev, nil
	}
	return dev, fmt.Errorf("the port '%s' was not found", name)
}

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "", "device type: bridge6, bridge4, click, uloop or rp-boot")
	cmd.Flags().String("description", "", "USB product string reported by the device (or a prefix of it)")
	cmd.Flags().String("serial", "", "USB serial number reported by the device")
}

func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("device", "d", "", "name of a stored device")
	addIdentityFlags(cmd)
}

func deviceFromIdentityFlags(cmd *cobra.Command) (device.Connected, error) {
	var dev device.Connected
	typeName, err := cmd.Flags().GetString("type")
	if err != nil {
		return dev, err
	}
	if typeName != "" {
		if dev.Type, err = device.ParseType(typeName); err != nil {
			return dev, err
		}
	}
	if dev.Description, err = cmd.Flags().GetString("description"); err != nil {
		return dev, err
	}
	if dev.SerialNumber, err = cmd.Flags().GetString("serial"); err != nil {
		return dev, err
	}
	return dev, nil
}

func hasIdentityFlags(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("type") || cmd.Flags().Changed("description") || cmd.Flags().Changed("serial")
}

// GetDevice returns the device the command should work on. It is taken from
// the identity flags, from '--device', or picked among the stored devices.
func GetDevice(cmd *cobra.Command) (device.Connected, error) {
	if hasIdentityFlags(cmd) {
		return deviceFromIdentityFlags(cmd)
	}

	cfg, err := directory.GetUserConfig()
	if err != nil {
		return device.Connected{}, err
	}
	devices, err := loadDevices(cfg)
	if err != nil {
		return device.Connected{}, err
	}

	name, err := cmd.Flags().GetString("device")
	if err != nil {
		return device.Connected{}, err
	}
	if name != "" {
		dev, ok := findDevice(devices, name)
		if !ok {
			return dev, fmt.Errorf("no stored device named '%s'. Use 'bridgeup devices list' to see the stored devices", name)
		}
		return dev, nil
	}

	switch {
	case len(devices) == 0:
		return device.Connected{}, fmt.Errorf("no device given. Use --type together with --description or --serial, or store a device with 'bridgeup devices add'")
	case len(devices) == 1:
		return devices[0], nil
	case !isInteractive():
		return device.Connected{}, fmt.Errorf("more than one device is stored, select one with --device")
	}
	return pickDevice(devices)
}

func pickDevice(devices []device.Connected) (device.Connected, error) {
	items := make([]string, len(devices))
	for i, d := range devices {
		items[i] = d.String()
	}
	prompt := promptui.Select{
		Label:     "Choose the device",
		Items:     items,
		Templates: &promptui.SelectTemplates{},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return device.Connected{}, fmt.Errorf("you didn't select anything")
	}
	return devices[i], nil
}
