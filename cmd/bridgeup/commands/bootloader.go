// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/toitlang/bridgeup/cmd/bridgeup/analytics"
	"github.com/toitlang/bridgeup/cmd/bridgeup/bootloader"
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
	"go.uber.org/zap"
)

func BootloaderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootloader",
		Short: "Switch a device into its bootloader",
		Long: "Switch a device into its bootloader so that new firmware can be uploaded.\n\n" +
			"The device is located by its USB product string on Windows and by its USB serial\n" +
			"number everywhere else. Use 'bridgeup config match' to change this.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := GetDevice(cmd)
			if err != nil {
				return err
			}

			engine, err := newEngine(cmd)
			if err != nil {
				return err
			}

			err = engine.Enter(dev)
			track(cmd.Context(), analytics.Transition(dev.Type.String(), bootloader.StrategyFor(dev.Type).String(), err))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device %s is in its bootloader\n", dev)
			return nil
		},
	}

	addDeviceFlags(cmd)
	return cmd
}

// newEngine builds the bootloader engine from the user config and the
// flags of cmd.
func newEngine(cmd *cobra.Command) (*bootloader.Engine, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	resolver, err := newResolver(logger)
	if err != nil {
		return nil, err
	}
	return bootloader.New(
		bootloader.WithResolver(resolver),
		bootloader.WithLogger(logger),
		bootloader.WithObserver(printState(cmd.ErrOrStderr())),
	), nil
}

// newResolver returns a resolver using the port matching of the user config.
func newResolver(logger *zap.Logger) (*ports.Resolver, error) {
	cfg, err := directory.GetUserConfig()
	if err != nil {
		return nil, err
	}
	matcher, err := ports.MatcherByName(cfg.GetString(directory.MatchCfgKey), runtime.GOOS)
	if err != nil {
		return nil, err
	}
	return ports.NewResolver(ports.WithMatcher(matcher), ports.WithLogger(logger)), nil
}

func printState(w io.Writer) bootloader.Observer {
	return func(dev device.Connected, state bootloader.State) {
		switch state {
		case bootloader.StateResolving:
			fmt.Fprintf(w, "Looking for the serial port of %s ...\n", dev)
		case bootloader.StateTransitioning:
			fmt.Fprintf(w, "Switching %s into its bootloader ...\n", dev)
		}
	}
}

// loggerFor is used by commands that don't build an engine.
func loggerFor(cmd *cobra.Command) *zap.Logger {
	logger, err := newLogger(cmd)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
