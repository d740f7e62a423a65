// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toitlang/bridgeup/cmd/bridgeup/analytics"
	"github.com/toitlang/bridgeup/cmd/bridgeup/bootloader"
	"github.com/toitlang/bridgeup/cmd/bridgeup/install"
)

func InstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Prepare a device for a firmware update",
		Long: "Select the firmware for a device and switch the device into its bootloader.\n" +
			"The selected firmware is printed so it can be handed to the uploader.",
	}

	cmd.AddCommand(
		InstallLocalCmd(),
		InstallRemoteCmd(),
	)
	return cmd
}

func InstallLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "local",
		Short:        "Install a firmware file from this computer",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := GetDevice(cmd)
			if err != nil {
				return err
			}

			file, err := cmd.Flags().GetString("file")
			if err != nil {
				return err
			}

			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}

			selector := promptSelector{path: file, interactive: isInteractive()}
			installer := install.New(selector, engine, install.WithLogger(loggerFor(cmd)))
			path, err := installer.Local(dev)
			if attemptedTransition(err) {
				track(cmd.Context(), analytics.Transition(dev.Type.String(), bootloader.StrategyFor(dev.Type).String(), err))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device %s is ready for '%s'\n", dev, path)
			return nil
		},
	}

	addDeviceFlags(cmd)
	cmd.Flags().StringP("file", "f", "", "firmware file to install. If not given, you will be asked for it")
	return cmd
}

// attemptedTransition reports whether Installer.Local got as far as the
// bootloader transition.
func attemptedTransition(err error) bool {
	return !errors.Is(err, install.ErrNoFile)
}

func InstallRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "remote",
		Short:        "Install a released firmware asset",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := GetDevice(cmd)
			if err != nil {
				return err
			}

			var asset install.Asset
			if asset.Name, err = cmd.Flags().GetString("asset-name"); err != nil {
				return err
			}
			if asset.URL, err = cmd.Flags().GetString("asset-url"); err != nil {
				return err
			}

			installer := install.New(nil, nil, install.WithLogger(loggerFor(cmd)))
			return installer.Remote(dev, asset)
		},
	}

	addDeviceFlags(cmd)
	cmd.Flags().String("asset-name", "", "name of the release asset")
	cmd.Flags().String("asset-url", "", "download URL of the release asset")
	cmd.MarkFlagRequired("asset-name")
	return cmd
}
